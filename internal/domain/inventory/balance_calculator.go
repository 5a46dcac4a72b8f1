package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// BalanceAt suma la cantidad efectiva de los movimientos aprobados que tocan la
// ubicación. Los movimientos de otros artículos deben venir filtrados.
func BalanceAt(movements []*entity.StockMovement, locationID string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.Status != entity.MovementStatusApproved || !m.Touches(locationID) {
			continue
		}
		total = total.Add(m.GetEffectiveQuantity(locationID))
	}
	return total
}

// Balance es la suma de BalanceAt sobre todas las ubicaciones que aparecen en
// los movimientos aprobados del artículo.
func Balance(movements []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, loc := range Locations(movements) {
		total = total.Add(BalanceAt(movements, loc))
	}
	return total
}

// BalanceByLocation devuelve el saldo por ubicación (solo ubicaciones tocadas).
func BalanceByLocation(movements []*entity.StockMovement) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, loc := range Locations(movements) {
		out[loc] = BalanceAt(movements, loc)
	}
	return out
}

// Locations ubicaciones distintas tocadas por movimientos aprobados, en orden de aparición.
func Locations(movements []*entity.StockMovement) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range movements {
		if m.Status != entity.MovementStatusApproved {
			continue
		}
		for _, loc := range m.Locations() {
			if _, ok := seen[loc]; ok {
				continue
			}
			seen[loc] = struct{}{}
			out = append(out, loc)
		}
	}
	return out
}

// Reserved suma lo pendiente de las reservas activas. locationID vacío = todas.
func Reserved(reservations []*entity.StockReservation, locationID string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reservations {
		if !r.IsActive() {
			continue
		}
		if locationID != "" && r.LocationID != locationID {
			continue
		}
		total = total.Add(r.QuantityRemaining())
	}
	return total
}

// Available = saldo - reservado activo.
func Available(balance, reserved decimal.Decimal) decimal.Decimal {
	return balance.Sub(reserved)
}

// BalanceLine fila del resumen de saldos de un artículo.
type BalanceLine struct {
	Item             *entity.StockItem
	LocationID       string // vacío = todas las ubicaciones
	Balance          decimal.Decimal
	Reserved         decimal.Decimal
	Available        decimal.Decimal
	AverageCost      decimal.Decimal
	TotalValue       decimal.Decimal // saldo * precio unitario actual
	IsBelowMinimum   bool
	IsAtReorderPoint bool
}

// Summarize arma la fila de un artículo. movements y reservations deben ser del
// artículo; locationID vacío agrega todas las ubicaciones.
func Summarize(item *entity.StockItem, movements []*entity.StockMovement, reservations []*entity.StockReservation, locationID string) BalanceLine {
	var balance decimal.Decimal
	if locationID == "" {
		balance = Balance(movements)
	} else {
		balance = BalanceAt(movements, locationID)
	}
	reserved := Reserved(reservations, locationID)
	return BalanceLine{
		Item:             item,
		LocationID:       locationID,
		Balance:          balance,
		Reserved:         reserved,
		Available:        Available(balance, reserved),
		AverageCost:      AverageCost(movements),
		TotalValue:       balance.Mul(item.UnitPrice),
		IsBelowMinimum:   balance.LessThan(item.MinimumLevel),
		IsAtReorderPoint: item.ReorderPoint.IsPositive() && balance.LessThanOrEqual(item.ReorderPoint),
	}
}
