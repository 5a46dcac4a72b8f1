package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Estados de una reserva.
const (
	ReservationStatusReserved = "Reserved"
	ReservationStatusIssued   = "Issued"
	ReservationStatusReleased = "Released"
	ReservationStatusExpired  = "Expired"
)

// StockReservation retiene stock de un artículo en una sola ubicación.
// QuantityReserved queda fijo al crear; QuantityIssued solo crece.
// Lo pendiente (QuantityRemaining) se deriva, no se guarda.
type StockReservation struct {
	ID               string
	TenantID         string
	Number           string
	ItemID           string
	LocationID       string
	QuantityReserved decimal.Decimal
	QuantityIssued   decimal.Decimal
	Status           string
	Purpose          string
	TenderID         string
	ExpiresAt        *time.Time
	RequestedBy      string
	ReleasedBy       string
	ReleasedAt       *time.Time
	ReleaseReason    string
	ExpiredAt        *time.Time
	IssuedAt         *time.Time // momento en que se consumió por completo
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StockReservationInput datos para crear una reserva.
type StockReservationInput struct {
	TenantID    string
	Number      string
	ItemID      string
	LocationID  string
	Quantity    decimal.Decimal
	Purpose     string
	TenderID    string
	ExpiresAt   *time.Time
	RequestedBy string
}

// NewStockReservation valida y construye una reserva en estado Reserved.
// La verificación de disponible la hace el caso de uso bajo bloqueo.
func NewStockReservation(in StockReservationInput, now time.Time) (*StockReservation, error) {
	if in.TenantID == "" || in.ItemID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: tenant, artículo y ubicación requeridos", domain.ErrInvalidInput)
	}
	if in.Number == "" {
		return nil, fmt.Errorf("%w: número de reserva requerido", domain.ErrInvalidInput)
	}
	if in.RequestedBy == "" {
		return nil, fmt.Errorf("%w: solicitante requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		return nil, fmt.Errorf("%w: propósito requerido", domain.ErrInvalidInput)
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: la expiración debe ser futura", domain.ErrInvalidInput)
	}
	return &StockReservation{
		ID:               uuid.New().String(),
		TenantID:         in.TenantID,
		Number:           in.Number,
		ItemID:           in.ItemID,
		LocationID:       in.LocationID,
		QuantityReserved: in.Quantity,
		QuantityIssued:   decimal.Zero,
		Status:           ReservationStatusReserved,
		Purpose:          purpose,
		TenderID:         in.TenderID,
		ExpiresAt:        in.ExpiresAt,
		RequestedBy:      in.RequestedBy,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// QuantityRemaining = reservado - entregado.
func (r *StockReservation) QuantityRemaining() decimal.Decimal {
	return r.QuantityReserved.Sub(r.QuantityIssued)
}

// IsActive indica si la reserva todavía retiene stock.
func (r *StockReservation) IsActive() bool {
	return r.Status == ReservationStatusReserved
}

// RecordIssue suma qty a lo entregado; al llegar a cero pasa a Issued.
// El movimiento de salida lo crea el caso de uso en la misma transacción.
func (r *StockReservation) RecordIssue(qty decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := r.requireReserved(); err != nil {
		return err
	}
	if qty.GreaterThan(r.QuantityRemaining()) {
		return fmt.Errorf("%w: pendiente %s, solicitado %s", domain.ErrInsufficientStock, r.QuantityRemaining(), qty)
	}
	r.QuantityIssued = r.QuantityIssued.Add(qty)
	if r.QuantityRemaining().IsZero() {
		at := now
		r.Status = ReservationStatusIssued
		r.IssuedAt = &at
	}
	r.UpdatedAt = now
	return nil
}

// Release libera lo pendiente. Solo desde Reserved.
func (r *StockReservation) Release(releaserID, reason string, now time.Time) error {
	if err := r.requireReserved(); err != nil {
		return err
	}
	if releaserID == "" {
		return fmt.Errorf("%w: responsable requerido", domain.ErrInvalidInput)
	}
	at := now
	r.Status = ReservationStatusReleased
	r.ReleasedBy = releaserID
	r.ReleasedAt = &at
	r.ReleaseReason = strings.TrimSpace(reason)
	r.UpdatedAt = now
	return nil
}

// Expire vence la reserva. Solo desde Reserved y con now > ExpiresAt.
func (r *StockReservation) Expire(now time.Time) error {
	if err := r.requireReserved(); err != nil {
		return err
	}
	if r.ExpiresAt == nil || !now.After(*r.ExpiresAt) {
		return fmt.Errorf("%w: la reserva %s aún no vence", domain.ErrInvalidState, r.Number)
	}
	at := now
	r.Status = ReservationStatusExpired
	r.ExpiredAt = &at
	r.UpdatedAt = now
	return nil
}

func (r *StockReservation) requireReserved() error {
	if r.Status != ReservationStatusReserved {
		return fmt.Errorf("%w: reserva %s está %s", domain.ErrInvalidState, r.Number, r.Status)
	}
	return nil
}
