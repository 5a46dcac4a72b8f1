package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockReservationRepository = (*StockReservationRepo)(nil)

const reservationColumns = `id, tenant_id, number, item_id, location_id, quantity_reserved, quantity_issued,
	status, purpose, tender_id, expires_at, requested_by, released_by, released_at, release_reason,
	expired_at, issued_at, version, created_at, updated_at`

// StockReservationRepo implementación de StockReservationRepository sobre PostgreSQL.
type StockReservationRepo struct {
	q Querier
}

// NewStockReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockReservationRepository(q Querier) *StockReservationRepo {
	return &StockReservationRepo{q: q}
}

// Create inserta una reserva.
func (r *StockReservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	query := `INSERT INTO stock_reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.TenantID, res.Number, res.ItemID, res.LocationID, res.QuantityReserved, res.QuantityIssued,
		res.Status, res.Purpose, nullString(res.TenderID), nullTime(res.ExpiresAt), res.RequestedBy,
		nullString(res.ReleasedBy), nullTime(res.ReleasedAt), nullString(res.ReleaseReason),
		nullTime(res.ExpiredAt), nullTime(res.IssuedAt), res.Version, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reserva %s", domain.ErrDuplicate, res.Number)
		}
		return fmt.Errorf("insert stock reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva del tenant.
func (r *StockReservationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockReservation, error) {
	if !isUUID(id) {
		return nil, nil
	}
	res, err := scanReservation(r.q.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM stock_reservations WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock reservation: %w", err)
	}
	return res, nil
}

// UpdateTransition guarda cantidades y estado si la versión no cambió.
func (r *StockReservationRepo) UpdateTransition(ctx context.Context, res *entity.StockReservation, expectedVersion int) error {
	query := `
		UPDATE stock_reservations SET quantity_issued = $4, status = $5, released_by = $6, released_at = $7,
			release_reason = $8, expired_at = $9, issued_at = $10, updated_at = $11, version = version + 1
		WHERE tenant_id = $1 AND id = $2 AND version = $3
		RETURNING version`
	var version int
	err := r.q.QueryRow(ctx, query,
		res.TenantID, res.ID, expectedVersion, res.QuantityIssued, res.Status,
		nullString(res.ReleasedBy), nullTime(res.ReleasedAt), nullString(res.ReleaseReason),
		nullTime(res.ExpiredAt), nullTime(res.IssuedAt), res.UpdatedAt,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: reserva %s cambió (versión %d)", domain.ErrConflict, res.Number, expectedVersion)
		}
		return fmt.Errorf("update stock reservation: %w", err)
	}
	res.Version = version
	return nil
}

// ListActive reservas Reserved del tenant.
func (r *StockReservationRepo) ListActive(ctx context.Context, tenantID string, f repository.ReservationFilter) ([]*entity.StockReservation, error) {
	query, args, ok := activeReservationQuery(tenantID, f)
	if !ok {
		return nil, nil
	}
	return r.list(ctx, query, args...)
}

// activeReservationQuery compara los ids como uuid para que use idx_stock_reservations_item_status.
// ok es false si un id de filtro no es UUID.
func activeReservationQuery(tenantID string, f repository.ReservationFilter) (query string, args []any, ok bool) {
	if (f.ItemID != "" && !isUUID(f.ItemID)) || (f.LocationID != "" && !isUUID(f.LocationID)) {
		return "", nil, false
	}
	var b strings.Builder
	args = []any{tenantID, entity.ReservationStatusReserved}
	b.WriteString(`SELECT ` + reservationColumns + ` FROM stock_reservations WHERE tenant_id = $1 AND status = $2`)
	if f.ItemID != "" {
		args = append(args, f.ItemID)
		fmt.Fprintf(&b, ` AND item_id = $%d::uuid`, len(args))
	}
	if f.LocationID != "" {
		args = append(args, f.LocationID)
		fmt.Fprintf(&b, ` AND location_id = $%d::uuid`, len(args))
	}
	b.WriteString(` ORDER BY created_at, number`)
	return b.String(), args, true
}

// ListByTender reservas de una licitación en cualquier estado.
func (r *StockReservationRepo) ListByTender(ctx context.Context, tenantID, tenderID string) ([]*entity.StockReservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM stock_reservations WHERE tenant_id = $1 AND tender_id = $2 ORDER BY created_at, number`,
		tenantID, tenderID)
}

// ListExpired reservas vencidas de todos los tenants, más antiguas primero.
func (r *StockReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM stock_reservations
		 WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
		 ORDER BY expires_at LIMIT $3`,
		entity.ReservationStatusReserved, now, limit)
}

func (r *StockReservationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockReservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func scanReservation(row pgx.Row) (*entity.StockReservation, error) {
	var (
		res                                 entity.StockReservation
		tenderID, releasedBy, releaseReason *string
	)
	err := row.Scan(
		&res.ID, &res.TenantID, &res.Number, &res.ItemID, &res.LocationID, &res.QuantityReserved,
		&res.QuantityIssued, &res.Status, &res.Purpose, &tenderID, &res.ExpiresAt, &res.RequestedBy,
		&releasedBy, &res.ReleasedAt, &releaseReason, &res.ExpiredAt, &res.IssuedAt,
		&res.Version, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.TenderID = derefString(tenderID)
	res.ReleasedBy = derefString(releasedBy)
	res.ReleaseReason = derefString(releaseReason)
	return &res, nil
}
