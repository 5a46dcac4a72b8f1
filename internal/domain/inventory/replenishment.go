package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// idealFactor stock ideal = punto de reorden * 1.5 cuando el artículo no define cantidad de pedido.
var idealFactor = decimal.NewFromFloat(1.5)

// Suggestion sugerencia de reposición para una fila del resumen.
type Suggestion struct {
	Line          BalanceLine
	IdealStock    decimal.Decimal
	SuggestedQty  decimal.Decimal
	EstimatedCost decimal.Decimal // SuggestedQty * costo unitario del artículo
	Deficit       decimal.Decimal // punto de reorden - disponible
	Priority      int             // 1 = más urgente
}

// SuggestedOrder cantidad a pedir para una fila. Si el artículo define
// ReorderQuantity se usa, pero nunca menos de lo que falta para volver al mínimo.
// Sin cantidad configurada se repone hasta el stock ideal.
func SuggestedOrder(line BalanceLine) (ideal, qty decimal.Decimal) {
	item := line.Item
	ideal = item.ReorderPoint.Mul(idealFactor)
	if item.ReorderQuantity.IsPositive() {
		qty = item.ReorderQuantity
		if gap := item.MinimumLevel.Sub(line.Available); gap.GreaterThan(qty) {
			qty = gap
		}
		return ideal, qty
	}
	qty = ideal.Sub(line.Available)
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	return ideal, qty
}

// Replenishment filtra las filas en o bajo el punto de reorden y las ordena:
// primero las que están bajo el mínimo, luego por mayor déficit, luego por SKU.
func Replenishment(lines []BalanceLine) []Suggestion {
	out := make([]Suggestion, 0)
	for _, l := range lines {
		if l.Item == nil || l.Item.IsService || !l.Item.ReorderPoint.IsPositive() {
			continue
		}
		if l.Available.GreaterThan(l.Item.ReorderPoint) {
			continue
		}
		ideal, qty := SuggestedOrder(l)
		out = append(out, Suggestion{
			Line:          l,
			IdealStock:    ideal,
			SuggestedQty:  qty,
			EstimatedCost: qty.Mul(l.Item.UnitCost),
			Deficit:       l.Item.ReorderPoint.Sub(l.Available),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Line.IsBelowMinimum != b.Line.IsBelowMinimum {
			return a.Line.IsBelowMinimum
		}
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		return a.Line.Item.SKU < b.Line.Item.SKU
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out
}
