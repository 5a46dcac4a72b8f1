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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, tenant_id, number, type, status, item_id, quantity, from_location_id, to_location_id,
	reason, notes, unit_cost, initiated_by, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	cancelled_by, cancelled_at, requires_approval, tender_id, task_id, document_id, reservation_id,
	version, created_at, updated_at`

// StockMovementRepo implementación del ledger sobre PostgreSQL. Solo inserta y
// actualiza transiciones; nunca borra.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.Number, m.Type, m.Status, m.ItemID, m.Quantity,
		nullString(m.FromLocationID), nullString(m.ToLocationID),
		m.Reason, m.Notes, m.UnitCost, m.InitiatedBy,
		nullString(m.ApprovedBy), nullTime(m.ApprovedAt),
		nullString(m.RejectedBy), nullTime(m.RejectedAt), nullString(m.RejectionReason),
		nullString(m.CancelledBy), nullTime(m.CancelledAt), m.RequiresApproval,
		nullString(m.Links.TenderID), nullString(m.Links.TaskID), nullString(m.Links.DocumentID),
		nullString(m.Links.ReservationID), m.Version, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.Number)
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento del tenant.
func (r *StockMovementRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StockMovement, error) {
	if !isUUID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx,
		`SELECT `+movementColumns+` FROM stock_movements WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// UpdateTransition guarda estado, aprobación/rechazo/cancelación y notas con
// control optimista: WHERE version = expectedVersion.
func (r *StockMovementRepo) UpdateTransition(ctx context.Context, m *entity.StockMovement, expectedVersion int) error {
	query := `
		UPDATE stock_movements SET status = $4, notes = $5,
			approved_by = $6, approved_at = $7, rejected_by = $8, rejected_at = $9, rejection_reason = $10,
			cancelled_by = $11, cancelled_at = $12, updated_at = $13, version = version + 1
		WHERE tenant_id = $1 AND id = $2 AND version = $3
		RETURNING version`
	var version int
	err := r.q.QueryRow(ctx, query,
		m.TenantID, m.ID, expectedVersion, m.Status, m.Notes,
		nullString(m.ApprovedBy), nullTime(m.ApprovedAt),
		nullString(m.RejectedBy), nullTime(m.RejectedAt), nullString(m.RejectionReason),
		nullString(m.CancelledBy), nullTime(m.CancelledAt), m.UpdatedAt,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: movimiento %s cambió (versión %d)", domain.ErrConflict, m.Number, expectedVersion)
		}
		return fmt.Errorf("update stock movement: %w", err)
	}
	m.Version = version
	return nil
}

// ListApproved movimientos aprobados filtrados por artículo y ubicación.
func (r *StockMovementRepo) ListApproved(ctx context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	f.Status = entity.MovementStatusApproved
	query, args, ok := movementQuery(tenantID, f, false)
	if !ok {
		return nil, nil
	}
	return r.list(ctx, query+` ORDER BY approved_at, number`, args)
}

// History movimientos filtrados, más recientes primero.
func (r *StockMovementRepo) History(ctx context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query, args, ok := movementQuery(tenantID, f, true)
	if !ok {
		return nil, nil
	}
	query += ` ORDER BY created_at DESC, number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return r.list(ctx, query, args)
}

// ListByReservation salidas ligadas a una reserva.
func (r *StockMovementRepo) ListByReservation(ctx context.Context, tenantID, reservationID string) ([]*entity.StockMovement, error) {
	if !isUUID(reservationID) {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT `+movementColumns+` FROM stock_movements WHERE tenant_id = $1 AND reservation_id = $2 ORDER BY number`,
		[]any{tenantID, reservationID})
}

// movementQuery arma el SELECT con los filtros presentes. withDates aplica From/To sobre created_at.
// ok es false si un id de filtro no es UUID: ninguna fila puede coincidir.
func movementQuery(tenantID string, f repository.MovementFilter, withDates bool) (query string, args []any, ok bool) {
	if (f.ItemID != "" && !isUUID(f.ItemID)) || (f.LocationID != "" && !isUUID(f.LocationID)) {
		return "", nil, false
	}
	var b strings.Builder
	args = []any{tenantID}
	b.WriteString(`SELECT ` + movementColumns + ` FROM stock_movements WHERE tenant_id = $1`)
	if f.ItemID != "" {
		args = append(args, f.ItemID)
		fmt.Fprintf(&b, ` AND item_id = $%d::uuid`, len(args))
	}
	if f.LocationID != "" {
		args = append(args, f.LocationID)
		fmt.Fprintf(&b, ` AND (from_location_id = $%d::uuid OR to_location_id = $%d::uuid)`, len(args), len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		fmt.Fprintf(&b, ` AND type = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		fmt.Fprintf(&b, ` AND status = $%d`, len(args))
	}
	if withDates && f.From != nil {
		args = append(args, *f.From)
		fmt.Fprintf(&b, ` AND created_at >= $%d`, len(args))
	}
	if withDates && f.To != nil {
		args = append(args, *f.To)
		fmt.Fprintf(&b, ` AND created_at <= $%d`, len(args))
	}
	return b.String(), args, true
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args []any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var (
		m                                    entity.StockMovement
		from, to                             *string
		approvedBy, rejectedBy, cancelledBy  *string
		rejectionReason                      *string
		tenderID, taskID, docID, reservation *string
	)
	err := row.Scan(
		&m.ID, &m.TenantID, &m.Number, &m.Type, &m.Status, &m.ItemID, &m.Quantity, &from, &to,
		&m.Reason, &m.Notes, &m.UnitCost, &m.InitiatedBy, &approvedBy, &m.ApprovedAt,
		&rejectedBy, &m.RejectedAt, &rejectionReason, &cancelledBy, &m.CancelledAt,
		&m.RequiresApproval, &tenderID, &taskID, &docID, &reservation,
		&m.Version, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.FromLocationID, m.ToLocationID = derefString(from), derefString(to)
	m.ApprovedBy, m.RejectedBy, m.CancelledBy = derefString(approvedBy), derefString(rejectedBy), derefString(cancelledBy)
	m.RejectionReason = derefString(rejectionReason)
	m.Links = entity.MovementLinks{
		TenderID:      derefString(tenderID),
		TaskID:        derefString(taskID),
		DocumentID:    derefString(docID),
		ReservationID: derefString(reservation),
	}
	return &m, nil
}
