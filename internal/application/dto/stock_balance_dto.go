package dto

import "github.com/shopspring/decimal"

// BalanceResponse saldo de un artículo (LocationID vacío = todas las ubicaciones).
type BalanceResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
}

// AvailableResponse disponible = saldo - reservado.
type AvailableResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	Reserved   decimal.Decimal `json:"reserved"`
	Available  decimal.Decimal `json:"available"`
}

// BalanceSummaryLine fila del resumen de saldos.
type BalanceSummaryLine struct {
	ItemID           string          `json:"item_id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	UnitOfMeasure    string          `json:"unit_of_measure"`
	Balance          decimal.Decimal `json:"balance"`
	Reserved         decimal.Decimal `json:"reserved"`
	Available        decimal.Decimal `json:"available"`
	MinimumLevel     decimal.Decimal `json:"minimum_level"`
	ReorderPoint     decimal.Decimal `json:"reorder_point"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Currency         string          `json:"currency"`
	IsBelowMinimum   bool            `json:"is_below_minimum"`
	IsAtReorderPoint bool            `json:"is_at_reorder_point"`
}

// BalanceSummaryResponse resumen por artículo; Totals agrupa el valor por moneda.
type BalanceSummaryResponse struct {
	LocationID string                     `json:"location_id,omitempty"`
	Items      []BalanceSummaryLine       `json:"items"`
	Totals     map[string]decimal.Decimal `json:"totals"`
}

// ReplenishmentSuggestion artículo en o bajo su punto de reorden con la cantidad sugerida de pedido.
type ReplenishmentSuggestion struct {
	ItemID            string          `json:"item_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	LocationID        string          `json:"location_id,omitempty"`
	Available         decimal.Decimal `json:"available"`
	MinimumLevel      decimal.Decimal `json:"minimum_level"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	IdealStock        decimal.Decimal `json:"ideal_stock"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_order_cost"`
	Currency          string          `json:"currency"`
	IsBelowMinimum    bool            `json:"is_below_minimum"`
	Priority          int             `json:"priority"` // 1 = más urgente
}
