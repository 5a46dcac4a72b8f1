// Package pdf genera el reporte imprimible del resumen de saldos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                    │  Fecha de generación    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Artículo | Saldo | Reservado | Disp. | Valor   │
//	│         (las filas bajo mínimo van marcadas)                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: valor por moneda                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"sort"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ stock.BalanceReportRenderer = (*BalanceReportGenerator)(nil)

// BalanceReportGenerator implementa stock.BalanceReportRenderer usando Maroto v2.
type BalanceReportGenerator struct {
	author string
}

// NewBalanceReportGenerator construye el generador; author va en los metadatos del PDF.
func NewBalanceReportGenerator(author string) *BalanceReportGenerator {
	return &BalanceReportGenerator{author: author}
}

// RenderBalanceSummary genera el PDF y devuelve sus bytes.
func (g *BalanceReportGenerator) RenderBalanceSummary(title string, generatedAt time.Time, summary *dto.BalanceSummaryResponse) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("pdf: resumen vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, generatedAt, len(summary.Items)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(summary.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(summary.Totals)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, generatedAt time.Time, count int) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d artículos", count), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Artículo", 3, align.Left),
		h("Saldo", 2, align.Right),
		h("Reservado", 1, align.Right),
		h("Disp.", 1, align.Right),
		h("Valor", 3, align.Right),
	)
}

// tableDetailRows una fila por artículo; bajo mínimo en rojo, punto de reorden con asterisco.
func tableDetailRows(lines []dto.BalanceSummaryLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		c := props.Text{Size: 8, Top: 1, Left: 1, Right: 1}
		if l.IsBelowMinimum {
			c.Color = colorAlert
		}
		name := l.Name
		if l.IsAtReorderPoint {
			name += " *"
		}
		right := c
		right.Align = align.Right
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.SKU, c)),
			col.New(3).Add(text.New(name, c)),
			col.New(2).Add(text.New(formatQty(l.Balance)+" "+l.UnitOfMeasure, right)),
			col.New(1).Add(text.New(formatQty(l.Reserved), right)),
			col.New(1).Add(text.New(formatQty(l.Available), right)),
			col.New(3).Add(text.New(l.Currency+" $"+formatMoney(l.TotalValue.StringFixed(0)), right)),
		))
	}
	return result
}

func totalsRows(totals map[string]decimal.Decimal) []core.Row {
	currencies := make([]string, 0, len(totals))
	for cur := range totals {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)

	rows := make([]core.Row, 0, len(currencies)+1)
	for _, cur := range currencies {
		rows = append(rows, row.New(7).Add(
			col.New(6),
			col.New(3).Add(text.New("TOTAL "+cur+":", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			})),
			col.New(3).Add(text.New("$"+formatMoney(totals[cur].StringFixed(0)), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			})),
		))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("* en o bajo el punto de reorden. En rojo: bajo el nivel mínimo.", props.Text{
			Size: 6.5, Color: colorGray, Top: 3,
		}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func formatQty(d decimal.Decimal) string {
	return d.Round(4).String()
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
