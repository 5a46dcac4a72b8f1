package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const itemColumns = `id, tenant_id, sku, name, description, category, unit_of_measure, unit_cost, unit_price,
	currency, status, minimum_level, reorder_point, reorder_quantity, is_service, track_inventory,
	created_by, updated_by, created_at, updated_at`

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Create persiste un artículo nuevo.
func (r *StockItemRepo) Create(ctx context.Context, it *entity.StockItem) error {
	query := `INSERT INTO stock_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.TenantID, it.SKU, it.Name, it.Description, it.Category, it.UnitOfMeasure,
		it.UnitCost, it.UnitPrice, it.Currency, it.Status, it.MinimumLevel, it.ReorderPoint,
		it.ReorderQuantity, it.IsService, it.TrackInventory, it.CreatedBy, it.UpdatedBy,
		it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, it.SKU)
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo del tenant. nil, nil si no existe.
func (r *StockItemRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockItem, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM stock_items WHERE tenant_id = $1 AND id = $2`
	it, err := scanItem(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return it, nil
}

// GetBySKU obtiene un artículo por SKU dentro del tenant.
func (r *StockItemRepo) GetBySKU(ctx context.Context, tenantID, sku string) (*entity.StockItem, error) {
	query := `SELECT ` + itemColumns + ` FROM stock_items WHERE tenant_id = $1 AND sku = $2`
	it, err := scanItem(r.q.QueryRow(ctx, query, tenantID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item by sku: %w", err)
	}
	return it, nil
}

// Update guarda los campos mutables del artículo. SKU y tenant no cambian.
func (r *StockItemRepo) Update(ctx context.Context, it *entity.StockItem) error {
	query := `
		UPDATE stock_items SET name = $3, description = $4, category = $5, unit_of_measure = $6,
			unit_cost = $7, unit_price = $8, currency = $9, status = $10, minimum_level = $11,
			reorder_point = $12, reorder_quantity = $13, is_service = $14, track_inventory = $15,
			updated_by = $16, updated_at = $17
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		it.TenantID, it.ID, it.Name, it.Description, it.Category, it.UnitOfMeasure,
		it.UnitCost, it.UnitPrice, it.Currency, it.Status, it.MinimumLevel, it.ReorderPoint,
		it.ReorderQuantity, it.IsService, it.TrackInventory, it.UpdatedBy, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, it.ID)
	}
	return nil
}

// List lista artículos del tenant ordenados por SKU.
func (r *StockItemRepo) List(ctx context.Context, tenantID string, f repository.ItemFilter) ([]*entity.StockItem, error) {
	var (
		b    strings.Builder
		args = []any{tenantID}
	)
	b.WriteString(`SELECT ` + itemColumns + ` FROM stock_items WHERE tenant_id = $1`)
	if f.Status != "" {
		args = append(args, f.Status)
		fmt.Fprintf(&b, ` AND status = $%d`, len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&b, ` AND category = $%d`, len(args))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		fmt.Fprintf(&b, ` AND (sku ILIKE $%d OR name ILIKE $%d)`, len(args), len(args))
	}
	b.WriteString(` ORDER BY sku`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&b, ` OFFSET $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanItem(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(
		&it.ID, &it.TenantID, &it.SKU, &it.Name, &it.Description, &it.Category, &it.UnitOfMeasure,
		&it.UnitCost, &it.UnitPrice, &it.Currency, &it.Status, &it.MinimumLevel, &it.ReorderPoint,
		&it.ReorderQuantity, &it.IsService, &it.TrackInventory, &it.CreatedBy, &it.UpdatedBy,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
