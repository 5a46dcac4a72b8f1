package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLinksRequest referencias externas opcionales de un movimiento.
type MovementLinksRequest struct {
	TenderID   string `json:"tender_id,omitempty"`
	TaskID     string `json:"task_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// CreateInMovementRequest body para POST /api/stock/movements/in.
// UnitCost nil = costo actual del artículo. RequiresApproval nil = política configurada.
type CreateInMovementRequest struct {
	ItemID           string           `json:"item_id" validate:"required"`
	ToLocationID     string           `json:"to_location_id" validate:"required"`
	Quantity         decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason           string           `json:"reason" validate:"required,max=500"`
	Notes            string           `json:"notes,omitempty"`
	RequiresApproval *bool            `json:"requires_approval,omitempty"`
	MovementLinksRequest
}

// CreateOutMovementRequest body para POST /api/stock/movements/out.
type CreateOutMovementRequest struct {
	ItemID           string           `json:"item_id" validate:"required"`
	FromLocationID   string           `json:"from_location_id" validate:"required"`
	Quantity         decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason           string           `json:"reason" validate:"required,max=500"`
	Notes            string           `json:"notes,omitempty"`
	RequiresApproval *bool            `json:"requires_approval,omitempty"`
	MovementLinksRequest
}

// CreateTransferMovementRequest body para POST /api/stock/movements/transfer.
type CreateTransferMovementRequest struct {
	ItemID           string           `json:"item_id" validate:"required"`
	FromLocationID   string           `json:"from_location_id" validate:"required"`
	ToLocationID     string           `json:"to_location_id" validate:"required"`
	Quantity         decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason           string           `json:"reason" validate:"required,max=500"`
	Notes            string           `json:"notes,omitempty"`
	RequiresApproval *bool            `json:"requires_approval,omitempty"`
	MovementLinksRequest
}

// CreateAdjustmentRequest body para POST /api/stock/movements/adjustment.
// RequiresApproval se acepta pero se ignora: los ajustes siempre quedan pendientes.
type CreateAdjustmentRequest struct {
	ItemID           string           `json:"item_id" validate:"required"`
	LocationID       string           `json:"location_id" validate:"required"`
	Quantity         decimal.Decimal  `json:"quantity" validate:"gt=0"`
	IsPositive       bool             `json:"is_positive"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason           string           `json:"reason" validate:"required,max=500"`
	Notes            string           `json:"notes,omitempty"`
	RequiresApproval *bool            `json:"requires_approval,omitempty"`
	MovementLinksRequest
}

// RejectMovementRequest body para POST /api/stock/movements/:id/reject.
type RejectMovementRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CancelMovementRequest body para POST /api/stock/movements/:id/cancel.
type CancelMovementRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// MovementHistoryRequest query de GET /api/stock/movements.
type MovementHistoryRequest struct {
	ItemID     string     `query:"item_id"`
	LocationID string     `query:"location_id"`
	Type       string     `query:"type" validate:"omitempty,oneof=In Out Transfer Adjustment"`
	Status     string     `query:"status" validate:"omitempty,oneof=Pending Approved Rejected Cancelled"`
	From       *time.Time `query:"-"`
	To         *time.Time `query:"-"`
	Limit      int        `query:"limit" validate:"min=0"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	ItemID           string          `json:"item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	FromLocationID   string          `json:"from_location_id,omitempty"`
	ToLocationID     string          `json:"to_location_id,omitempty"`
	Reason           string          `json:"reason"`
	Notes            string          `json:"notes,omitempty"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalValue       decimal.Decimal `json:"total_value"`
	InitiatedBy      string          `json:"initiated_by"`
	ApprovedBy       string          `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	RejectedBy       string          `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time      `json:"rejected_at,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	CancelledBy      string          `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	RequiresApproval bool            `json:"requires_approval"`
	TenderID         string          `json:"tender_id,omitempty"`
	TaskID           string          `json:"task_id,omitempty"`
	DocumentID       string          `json:"document_id,omitempty"`
	ReservationID    string          `json:"reservation_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MovementListResponse lista de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
}
