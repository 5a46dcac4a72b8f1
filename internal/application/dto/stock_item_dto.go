package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/stock/items.
type CreateItemRequest struct {
	SKU            string          `json:"sku" validate:"required,max=64"`
	Name           string          `json:"name" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=1000"`
	Category       string          `json:"category" validate:"required,oneof=Product Service RawMaterial FinishedGoods Consumable Equipment"`
	UnitOfMeasure  string          `json:"unit_of_measure" validate:"max=20"`
	UnitCost       decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Currency       string          `json:"currency" validate:"omitempty,len=3"` // vacío = moneda por defecto
	IsService      bool            `json:"is_service"`
	TrackInventory *bool           `json:"track_inventory,omitempty"` // nil = true (salvo servicios)
}

// UpdateItemRequest body para PUT /api/stock/items/:id (nil = sin cambio).
type UpdateItemRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" validate:"omitempty,max=1000"`
	Category      *string          `json:"category" validate:"omitempty,oneof=Product Service RawMaterial FinishedGoods Consumable Equipment"`
	UnitOfMeasure *string          `json:"unit_of_measure" validate:"omitempty,max=20"`
	UnitCost      *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
	UnitPrice     *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Currency      *string          `json:"currency" validate:"omitempty,len=3"`
}

// SetStockLevelsRequest body para PUT /api/stock/items/:id/levels.
type SetStockLevelsRequest struct {
	MinimumLevel    decimal.Decimal `json:"minimum_level" validate:"gte=0"`
	ReorderPoint    decimal.Decimal `json:"reorder_point" validate:"gte=0"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity" validate:"gte=0"`
}

// ItemFilterRequest query de GET /api/stock/items.
type ItemFilterRequest struct {
	Status   string `query:"status" validate:"omitempty,oneof=Active Inactive Discontinued"`
	Category string `query:"category"`
	Search   string `query:"search"`
	PageRequest
}

// ItemResponse salida de un artículo.
type ItemResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	MinimumLevel    decimal.Decimal `json:"minimum_level" validate:"gte=0"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	IsService       bool            `json:"is_service"`
	TrackInventory  bool            `json:"track_inventory"`
	CreatedBy       string          `json:"created_by"`
	UpdatedBy       string          `json:"updated_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
