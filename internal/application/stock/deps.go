package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Deps dependencias compartidas por los casos de uso de stock.
// Repos son los repositorios fuera de transacción, usados para lecturas.
type Deps struct {
	Tx       TxRunner
	Repos    Repos
	Auth     Authorizer
	Events   *EventDispatcher
	Policy   ApprovalPolicy
	Settings Settings
	Now      func() time.Time
}

// Settings parámetros de negocio configurables.
type Settings struct {
	DefaultCurrency string
	ConflictRetries int
	HistoryMaxLimit int
}

// DefaultSettings valores por defecto.
func DefaultSettings() Settings {
	return Settings{DefaultCurrency: "COP", ConflictRetries: 3, HistoryMaxLimit: 500}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func loadItem(ctx context.Context, r Repos, tenantID, id string) (*entity.StockItem, error) {
	item, err := r.Items.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, id)
	}
	return item, nil
}

func loadLocation(ctx context.Context, r Repos, tenantID, id string) (*entity.StockLocation, error) {
	loc, err := r.Locations.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return loc, nil
}

// requireActiveItem artículo existente y Active (nuevos movimientos y reservas).
func requireActiveItem(ctx context.Context, r Repos, tenantID, id string) (*entity.StockItem, error) {
	item, err := loadItem(ctx, r, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !item.IsActive() {
		return nil, fmt.Errorf("%w: artículo %s está %s", domain.ErrInvalidState, item.SKU, item.Status)
	}
	return item, nil
}

func requireActiveLocation(ctx context.Context, r Repos, tenantID, id string) (*entity.StockLocation, error) {
	loc, err := loadLocation(ctx, r, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !loc.IsActive {
		return nil, fmt.Errorf("%w: ubicación %s inactiva", domain.ErrInvalidState, loc.Code)
	}
	return loc, nil
}

// availableAt calcula saldo, reservado y disponible de (artículo, ubicación) con
// los repositorios recibidos. Dentro de una tx debe llamarse con el bloqueo tomado.
func availableAt(ctx context.Context, r Repos, tenantID, itemID, locationID string) (balance, reserved decimal.Decimal, err error) {
	movs, err := r.Movements.ListApproved(ctx, tenantID, repository.MovementFilter{ItemID: itemID, LocationID: locationID})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	res, err := r.Reservations.ListActive(ctx, tenantID, repository.ReservationFilter{ItemID: itemID, LocationID: locationID})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return inventory.BalanceAt(movs, locationID), inventory.Reserved(res, locationID), nil
}

// ensureAvailable toma el bloqueo de la llave y verifica disponible >= qty.
func ensureAvailable(ctx context.Context, r Repos, tenantID, itemID, locationID string, qty decimal.Decimal) error {
	if err := r.Locker.LockStock(ctx, tenantID, itemID, locationID); err != nil {
		return err
	}
	balance, reserved, err := availableAt(ctx, r, tenantID, itemID, locationID)
	if err != nil {
		return err
	}
	available := inventory.Available(balance, reserved)
	if available.LessThan(qty) {
		return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, available, qty)
	}
	return nil
}
