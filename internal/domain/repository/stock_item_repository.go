package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ItemFilter filtros opcionales para listar artículos (vacío = sin filtro).
type ItemFilter struct {
	Status   string
	Category string
	Search   string // coincide con SKU o nombre, sin distinguir mayúsculas
	Limit    int
	Offset   int
}

// StockItemRepository define el puerto de persistencia para artículos (DIP).
// Toda consulta va parametrizada por tenant.
type StockItemRepository interface {
	// Create falla con domain.ErrDuplicate si el SKU ya existe en el tenant.
	Create(ctx context.Context, item *entity.StockItem) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockItem, error)
	GetBySKU(ctx context.Context, tenantID, sku string) (*entity.StockItem, error)
	Update(ctx context.Context, item *entity.StockItem) error
	List(ctx context.Context, tenantID string, f ItemFilter) ([]*entity.StockItem, error)
}
