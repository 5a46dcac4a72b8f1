package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros del historial. Los campos vacíos no filtran.
// LocationID coincide con origen o destino.
type MovementFilter struct {
	ItemID     string
	LocationID string
	Type       string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// StockMovementRepository define el puerto de persistencia del ledger (DIP).
// No existe Delete: los movimientos nunca se borran.
type StockMovementRepository interface {
	// Create falla con domain.ErrDuplicate si el número ya existe en el tenant.
	Create(ctx context.Context, m *entity.StockMovement) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockMovement, error)
	// UpdateTransition guarda la transición terminal solo si la versión persistida
	// sigue siendo expectedVersion; si no, devuelve domain.ErrConflict.
	UpdateTransition(ctx context.Context, m *entity.StockMovement, expectedVersion int) error
	// ListApproved movimientos aprobados del tenant (ItemID/LocationID opcionales).
	ListApproved(ctx context.Context, tenantID string, f MovementFilter) ([]*entity.StockMovement, error)
	// History más recientes primero.
	History(ctx context.Context, tenantID string, f MovementFilter) ([]*entity.StockMovement, error)
	ListByReservation(ctx context.Context, tenantID, reservationID string) ([]*entity.StockMovement, error)
}
