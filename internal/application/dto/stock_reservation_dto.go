package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReserveStockRequest body para POST /api/stock/reservations.
type ReserveStockRequest struct {
	ItemID     string          `json:"item_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	Purpose    string          `json:"purpose" validate:"required,max=500"`
	TenderID   string          `json:"tender_id,omitempty"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

// IssueReservationRequest body para POST /api/stock/reservations/:id/issue.
type IssueReservationRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	Reason   string          `json:"reason" validate:"required,max=500"`
	Notes    string          `json:"notes,omitempty"`
}

// ReleaseReservationRequest body para POST /api/stock/reservations/:id/release.
type ReleaseReservationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	ItemID            string          `json:"item_id"`
	LocationID        string          `json:"location_id"`
	QuantityReserved  decimal.Decimal `json:"quantity_reserved"`
	QuantityIssued    decimal.Decimal `json:"quantity_issued"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	Status            string          `json:"status"`
	Purpose           string          `json:"purpose"`
	TenderID          string          `json:"tender_id,omitempty"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	RequestedBy       string          `json:"requested_by"`
	ReleasedBy        string          `json:"released_by,omitempty"`
	ReleasedAt        *time.Time      `json:"released_at,omitempty"`
	ReleaseReason     string          `json:"release_reason,omitempty"`
	ExpiredAt         *time.Time      `json:"expired_at,omitempty"`
	IssuedAt          *time.Time      `json:"issued_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IssueReservationResponse reserva actualizada y movimiento de salida creado.
type IssueReservationResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Movement    MovementResponse    `json:"movement"`
}

// ReservationListResponse lista de reservas.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
}
