package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// BalanceUseCase consultas de saldo y disponible. No guarda estado: todo se
// deriva del ledger y de las reservas activas en cada llamada.
type BalanceUseCase struct {
	d        Deps
	renderer BalanceReportRenderer
}

// NewBalanceUseCase construye el caso de uso. renderer puede ser nil si no se exponen reportes.
func NewBalanceUseCase(d Deps, renderer BalanceReportRenderer) *BalanceUseCase {
	return &BalanceUseCase{d: d, renderer: renderer}
}

// GetBalance saldo total del artículo sobre todas las ubicaciones.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, a Actor, itemID string) (*dto.BalanceResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if _, err := loadItem(ctx, uc.d.Repos, a.TenantID, itemID); err != nil {
		return nil, err
	}
	movs, err := uc.d.Repos.Movements.ListApproved(ctx, a.TenantID, repository.MovementFilter{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{ItemID: itemID, Balance: inventory.Balance(movs)}, nil
}

// GetBalanceAtLocation saldo del artículo en una ubicación.
func (uc *BalanceUseCase) GetBalanceAtLocation(ctx context.Context, a Actor, itemID, locationID string) (*dto.BalanceResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if err := uc.requireRefs(ctx, a.TenantID, itemID, locationID); err != nil {
		return nil, err
	}
	movs, err := uc.d.Repos.Movements.ListApproved(ctx, a.TenantID, repository.MovementFilter{ItemID: itemID, LocationID: locationID})
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{ItemID: itemID, LocationID: locationID, Balance: inventory.BalanceAt(movs, locationID)}, nil
}

// GetAvailable saldo - reservado; locationID vacío = todas las ubicaciones.
func (uc *BalanceUseCase) GetAvailable(ctx context.Context, a Actor, itemID, locationID string) (*dto.AvailableResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if err := uc.requireRefs(ctx, a.TenantID, itemID, locationID); err != nil {
		return nil, err
	}
	var balance, reserved decimal.Decimal
	if locationID != "" {
		b, r, err := availableAt(ctx, uc.d.Repos, a.TenantID, itemID, locationID)
		if err != nil {
			return nil, err
		}
		balance, reserved = b, r
	} else {
		movs, err := uc.d.Repos.Movements.ListApproved(ctx, a.TenantID, repository.MovementFilter{ItemID: itemID})
		if err != nil {
			return nil, err
		}
		res, err := uc.d.Repos.Reservations.ListActive(ctx, a.TenantID, repository.ReservationFilter{ItemID: itemID})
		if err != nil {
			return nil, err
		}
		balance, reserved = inventory.Balance(movs), inventory.Reserved(res, "")
	}
	return &dto.AvailableResponse{
		ItemID:     itemID,
		LocationID: locationID,
		Balance:    balance,
		Reserved:   reserved,
		Available:  inventory.Available(balance, reserved),
	}, nil
}

func (uc *BalanceUseCase) requireRefs(ctx context.Context, tenantID, itemID, locationID string) error {
	if _, err := loadItem(ctx, uc.d.Repos, tenantID, itemID); err != nil {
		return err
	}
	if locationID == "" {
		return nil
	}
	_, err := loadLocation(ctx, uc.d.Repos, tenantID, locationID)
	return err
}

// GetBalanceSummary resumen de todos los artículos con inventario (los servicios
// no llevan saldo). locationID vacío agrega todas las ubicaciones.
func (uc *BalanceUseCase) GetBalanceSummary(ctx context.Context, a Actor, locationID string) (*dto.BalanceSummaryResponse, error) {
	lines, err := uc.summaryLines(ctx, a, locationID)
	if err != nil {
		return nil, err
	}
	out := &dto.BalanceSummaryResponse{
		LocationID: locationID,
		Items:      make([]dto.BalanceSummaryLine, 0, len(lines)),
		Totals:     make(map[string]decimal.Decimal),
	}
	for _, line := range lines {
		item := line.Item
		out.Items = append(out.Items, dto.BalanceSummaryLine{
			ItemID:           item.ID,
			SKU:              item.SKU,
			Name:             item.Name,
			UnitOfMeasure:    item.UnitOfMeasure,
			Balance:          line.Balance,
			Reserved:         line.Reserved,
			Available:        line.Available,
			MinimumLevel:     item.MinimumLevel,
			ReorderPoint:     item.ReorderPoint,
			UnitPrice:        item.UnitPrice,
			AverageCost:      line.AverageCost,
			TotalValue:       line.TotalValue,
			Currency:         item.Currency,
			IsBelowMinimum:   line.IsBelowMinimum,
			IsAtReorderPoint: line.IsAtReorderPoint,
		})
		out.Totals[item.Currency] = out.Totals[item.Currency].Add(line.TotalValue)
	}
	return out, nil
}

// GetReplenishmentList artículos activos cuyo disponible está en o bajo el punto
// de reorden, con la cantidad sugerida de pedido y su prioridad.
func (uc *BalanceUseCase) GetReplenishmentList(ctx context.Context, a Actor, locationID string) ([]dto.ReplenishmentSuggestion, error) {
	lines, err := uc.summaryLines(ctx, a, locationID)
	if err != nil {
		return nil, err
	}
	active := lines[:0]
	for _, l := range lines {
		if l.Item.IsActive() {
			active = append(active, l)
		}
	}

	suggestions := inventory.Replenishment(active)
	out := make([]dto.ReplenishmentSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		item := s.Line.Item
		out = append(out, dto.ReplenishmentSuggestion{
			ItemID:            item.ID,
			SKU:               item.SKU,
			Name:              item.Name,
			LocationID:        locationID,
			Available:         s.Line.Available,
			MinimumLevel:      item.MinimumLevel,
			ReorderPoint:      item.ReorderPoint,
			IdealStock:        s.IdealStock,
			SuggestedOrderQty: s.SuggestedQty,
			UnitCost:          item.UnitCost,
			EstimatedCost:     s.EstimatedCost,
			Currency:          item.Currency,
			IsBelowMinimum:    s.Line.IsBelowMinimum,
			Priority:          s.Priority,
		})
	}
	return out, nil
}

func (uc *BalanceUseCase) summaryLines(ctx context.Context, a Actor, locationID string) ([]inventory.BalanceLine, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if locationID != "" {
		if _, err := loadLocation(ctx, uc.d.Repos, a.TenantID, locationID); err != nil {
			return nil, err
		}
	}
	items, err := uc.d.Repos.Items.List(ctx, a.TenantID, repository.ItemFilter{})
	if err != nil {
		return nil, err
	}
	movs, err := uc.d.Repos.Movements.ListApproved(ctx, a.TenantID, repository.MovementFilter{})
	if err != nil {
		return nil, err
	}
	res, err := uc.d.Repos.Reservations.ListActive(ctx, a.TenantID, repository.ReservationFilter{LocationID: locationID})
	if err != nil {
		return nil, err
	}
	movsByItem := make(map[string][]*entity.StockMovement)
	for _, m := range movs {
		movsByItem[m.ItemID] = append(movsByItem[m.ItemID], m)
	}
	resByItem := make(map[string][]*entity.StockReservation)
	for _, r := range res {
		resByItem[r.ItemID] = append(resByItem[r.ItemID], r)
	}

	lines := make([]inventory.BalanceLine, 0, len(items))
	for _, item := range items {
		if item.IsService {
			continue
		}
		lines = append(lines, inventory.Summarize(item, movsByItem[item.ID], resByItem[item.ID], locationID))
	}
	return lines, nil
}

// BalanceReport genera el PDF del resumen de saldos.
func (uc *BalanceUseCase) BalanceReport(ctx context.Context, a Actor, locationID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("balance report: renderer no configurado")
	}
	summary, err := uc.GetBalanceSummary(ctx, a, locationID)
	if err != nil {
		return nil, err
	}
	title := "Resumen de saldos"
	if locationID != "" {
		loc, err := loadLocation(ctx, uc.d.Repos, a.TenantID, locationID)
		if err != nil {
			return nil, err
		}
		title = fmt.Sprintf("Resumen de saldos - %s %s", loc.Code, loc.Name)
	}
	return uc.renderer.RenderBalanceSummary(title, uc.d.now(), summary)
}
