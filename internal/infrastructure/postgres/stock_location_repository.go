package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockLocationRepository = (*StockLocationRepo)(nil)

const locationColumns = `id, tenant_id, code, name, description, is_virtual, is_active, created_at, updated_at`

// StockLocationRepo implementación de StockLocationRepository sobre PostgreSQL.
type StockLocationRepo struct {
	q Querier
}

// NewStockLocationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockLocationRepository(q Querier) *StockLocationRepo {
	return &StockLocationRepo{q: q}
}

// Create persiste una ubicación.
func (r *StockLocationRepo) Create(ctx context.Context, l *entity.StockLocation) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO stock_locations (`+locationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.TenantID, l.Code, l.Name, l.Description, l.IsVirtual, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, l.Code)
		}
		return fmt.Errorf("insert stock location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación del tenant.
func (r *StockLocationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockLocation, error) {
	if !isUUID(id) {
		return nil, nil
	}
	l, err := scanLocation(r.q.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM stock_locations WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location: %w", err)
	}
	return l, nil
}

// GetByCode obtiene una ubicación por código.
func (r *StockLocationRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.StockLocation, error) {
	l, err := scanLocation(r.q.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM stock_locations WHERE tenant_id = $1 AND code = $2`, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location by code: %w", err)
	}
	return l, nil
}

// Update guarda nombre, descripción y estado.
func (r *StockLocationRepo) Update(ctx context.Context, l *entity.StockLocation) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_locations SET name = $3, description = $4, is_active = $5, updated_at = $6
		 WHERE tenant_id = $1 AND id = $2`,
		l.TenantID, l.ID, l.Name, l.Description, l.IsActive, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, l.ID)
	}
	return nil
}

// List lista ubicaciones del tenant por código.
func (r *StockLocationRepo) List(ctx context.Context, tenantID string, activeOnly bool) ([]*entity.StockLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM stock_locations
		WHERE tenant_id = $1 AND (NOT $2::boolean OR is_active) ORDER BY code`
	rows, err := r.q.Query(ctx, query, tenantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list stock locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLocation(row pgx.Row) (*entity.StockLocation, error) {
	var l entity.StockLocation
	if err := row.Scan(&l.ID, &l.TenantID, &l.Code, &l.Name, &l.Description, &l.IsVirtual, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
