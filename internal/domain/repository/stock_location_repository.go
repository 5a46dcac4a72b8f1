package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockLocationRepository define el puerto de persistencia para ubicaciones (DIP).
type StockLocationRepository interface {
	// Create falla con domain.ErrDuplicate si el código ya existe en el tenant.
	Create(ctx context.Context, loc *entity.StockLocation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockLocation, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.StockLocation, error)
	Update(ctx context.Context, loc *entity.StockLocation) error
	List(ctx context.Context, tenantID string, activeOnly bool) ([]*entity.StockLocation, error)
}
