package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ReservationFilter filtros opcionales para reservas activas.
type ReservationFilter struct {
	ItemID     string
	LocationID string
}

// StockReservationRepository define el puerto de persistencia para reservas (DIP).
type StockReservationRepository interface {
	Create(ctx context.Context, r *entity.StockReservation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StockReservation, error)
	// UpdateTransition guarda cantidades y estado si la versión coincide; si no, domain.ErrConflict.
	UpdateTransition(ctx context.Context, r *entity.StockReservation, expectedVersion int) error
	// ListActive reservas en estado Reserved.
	ListActive(ctx context.Context, tenantID string, f ReservationFilter) ([]*entity.StockReservation, error)
	ListByTender(ctx context.Context, tenantID, tenderID string) ([]*entity.StockReservation, error)
	// ListExpired reservas Reserved con expires_at < now, de todos los tenants (para el barrido).
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.StockReservation, error)
}
