package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// AverageCost recorre los movimientos aprobados de un artículo en orden de
// aprobación y devuelve el costo promedio ponderado resultante. Las entradas
// (In y ajustes positivos) recalculan el promedio con su costo congelado; las
// salidas solo bajan la existencia. Los traslados no cambian el total del artículo.
func AverageCost(movements []*entity.StockMovement) decimal.Decimal {
	approved := make([]*entity.StockMovement, 0, len(movements))
	for _, m := range movements {
		if m.Status == entity.MovementStatusApproved {
			approved = append(approved, m)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return approvedAt(approved[i]).Before(approvedAt(approved[j]))
	})

	stock, avg := decimal.Zero, decimal.Zero
	for _, m := range approved {
		switch {
		case m.Type == entity.MovementTypeIn,
			m.Type == entity.MovementTypeAdjustment && m.ToLocationID != "":
			avg = CostCalculator(stock, avg, m.Quantity, m.UnitCost)
			stock = stock.Add(m.Quantity)
		case m.Type == entity.MovementTypeOut,
			m.Type == entity.MovementTypeAdjustment && m.FromLocationID != "":
			stock = stock.Sub(m.Quantity)
			if !stock.IsPositive() {
				// Sin existencia el próximo ingreso fija el costo.
				stock = decimal.Zero
			}
		}
	}
	return avg.Round(4)
}

func approvedAt(m *entity.StockMovement) time.Time {
	if m.ApprovedAt != nil {
		return *m.ApprovedAt
	}
	return m.CreatedAt
}
