package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Categorías de artículo de inventario.
const (
	ItemCategoryProduct       = "Product"
	ItemCategoryService       = "Service"
	ItemCategoryRawMaterial   = "RawMaterial"
	ItemCategoryFinishedGoods = "FinishedGoods"
	ItemCategoryConsumable    = "Consumable"
	ItemCategoryEquipment     = "Equipment"
)

// Estados de un artículo.
const (
	ItemStatusActive       = "Active"
	ItemStatusInactive     = "Inactive"
	ItemStatusDiscontinued = "Discontinued"
)

// ValidItemCategory indica si la categoría es una de las soportadas.
func ValidItemCategory(c string) bool {
	switch c {
	case ItemCategoryProduct, ItemCategoryService, ItemCategoryRawMaterial,
		ItemCategoryFinishedGoods, ItemCategoryConsumable, ItemCategoryEquipment:
		return true
	}
	return false
}

// ValidItemStatus indica si el estado es uno de los soportados.
func ValidItemStatus(s string) bool {
	return s == ItemStatusActive || s == ItemStatusInactive || s == ItemStatusDiscontinued
}

// StockItem representa un artículo del catálogo (SKU único por tenant).
// Nunca guarda cantidad: el saldo se deriva siempre del ledger de movimientos.
// Se construye con NewStockItem y se modifica solo con los métodos nombrados.
type StockItem struct {
	ID              string
	TenantID        string
	SKU             string
	Name            string
	Description     string
	Category        string
	UnitOfMeasure   string
	UnitCost        decimal.Decimal
	UnitPrice       decimal.Decimal
	Currency        string
	Status          string
	MinimumLevel    decimal.Decimal
	ReorderPoint    decimal.Decimal
	ReorderQuantity decimal.Decimal
	IsService       bool
	TrackInventory  bool
	CreatedBy       string
	UpdatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StockItemInput datos para crear un artículo.
type StockItemInput struct {
	TenantID       string
	SKU            string
	Name           string
	Description    string
	Category       string
	UnitOfMeasure  string
	UnitCost       decimal.Decimal
	UnitPrice      decimal.Decimal
	Currency       string
	IsService      bool
	TrackInventory bool
	CreatedBy      string
}

// NewStockItem valida la entrada y construye un artículo Active.
// Los servicios nunca llevan inventario (TrackInventory queda en false).
func NewStockItem(in StockItemInput, now time.Time) (*StockItem, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if in.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant requerido", domain.ErrInvalidInput)
	}
	if sku == "" || name == "" {
		return nil, fmt.Errorf("%w: sku y nombre son requeridos", domain.ErrInvalidInput)
	}
	if !ValidItemCategory(in.Category) {
		return nil, fmt.Errorf("%w: categoría %q desconocida", domain.ErrInvalidInput, in.Category)
	}
	if err := validatePrices(in.UnitCost, in.UnitPrice); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Currency) == "" {
		return nil, fmt.Errorf("%w: moneda requerida", domain.ErrInvalidInput)
	}
	unit := strings.TrimSpace(in.UnitOfMeasure)
	if unit == "" {
		unit = "unit"
	}
	isService := in.IsService || in.Category == ItemCategoryService
	return &StockItem{
		ID:              uuid.New().String(),
		TenantID:        in.TenantID,
		SKU:             sku,
		Name:            name,
		Description:     in.Description,
		Category:        in.Category,
		UnitOfMeasure:   unit,
		UnitCost:        in.UnitCost,
		UnitPrice:       in.UnitPrice,
		Currency:        strings.ToUpper(strings.TrimSpace(in.Currency)),
		Status:          ItemStatusActive,
		MinimumLevel:    decimal.Zero,
		ReorderPoint:    decimal.Zero,
		ReorderQuantity: decimal.Zero,
		IsService:       isService,
		TrackInventory:  in.TrackInventory && !isService,
		CreatedBy:       in.CreatedBy,
		UpdatedBy:       in.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// StockItemDetails campos descriptivos modificables (nil = sin cambio).
type StockItemDetails struct {
	Name          *string
	Description   *string
	Category      *string
	UnitOfMeasure *string
	UnitCost      *decimal.Decimal
	UnitPrice     *decimal.Decimal
	Currency      *string
}

// UpdateDetails aplica los campos descriptivos. Valida todo antes de asignar.
func (i *StockItem) UpdateDetails(d StockItemDetails, by string, now time.Time) error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if d.Category != nil && !ValidItemCategory(*d.Category) {
		return fmt.Errorf("%w: categoría %q desconocida", domain.ErrInvalidInput, *d.Category)
	}
	if d.Currency != nil && strings.TrimSpace(*d.Currency) == "" {
		return fmt.Errorf("%w: moneda vacía", domain.ErrInvalidInput)
	}
	cost, price := i.UnitCost, i.UnitPrice
	if d.UnitCost != nil {
		cost = *d.UnitCost
	}
	if d.UnitPrice != nil {
		price = *d.UnitPrice
	}
	if err := validatePrices(cost, price); err != nil {
		return err
	}

	if d.Name != nil {
		i.Name = strings.TrimSpace(*d.Name)
	}
	if d.Description != nil {
		i.Description = *d.Description
	}
	if d.Category != nil {
		i.Category = *d.Category
		if i.Category == ItemCategoryService {
			i.IsService = true
			i.TrackInventory = false
		}
	}
	if d.UnitOfMeasure != nil && strings.TrimSpace(*d.UnitOfMeasure) != "" {
		i.UnitOfMeasure = strings.TrimSpace(*d.UnitOfMeasure)
	}
	if d.Currency != nil {
		i.Currency = strings.ToUpper(strings.TrimSpace(*d.Currency))
	}
	i.UnitCost, i.UnitPrice = cost, price
	i.touch(by, now)
	return nil
}

// SetStockLevels fija mínimo, punto y cantidad de reorden (todos >= 0).
func (i *StockItem) SetStockLevels(minimum, reorderPoint, reorderQty decimal.Decimal, by string, now time.Time) error {
	if minimum.IsNegative() || reorderPoint.IsNegative() || reorderQty.IsNegative() {
		return fmt.Errorf("%w: los niveles no pueden ser negativos", domain.ErrInvalidInput)
	}
	i.MinimumLevel = minimum
	i.ReorderPoint = reorderPoint
	i.ReorderQuantity = reorderQty
	i.touch(by, now)
	return nil
}

// Activate reactiva un artículo inactivo. Discontinued es definitivo.
func (i *StockItem) Activate(by string, now time.Time) error {
	if i.Status == ItemStatusDiscontinued {
		return fmt.Errorf("%w: artículo descontinuado", domain.ErrInvalidState)
	}
	i.Status = ItemStatusActive
	i.touch(by, now)
	return nil
}

// Deactivate marca el artículo como inactivo.
func (i *StockItem) Deactivate(by string, now time.Time) error {
	if i.Status == ItemStatusDiscontinued {
		return fmt.Errorf("%w: artículo descontinuado", domain.ErrInvalidState)
	}
	i.Status = ItemStatusInactive
	i.touch(by, now)
	return nil
}

// Discontinue retira el artículo de forma permanente.
func (i *StockItem) Discontinue(by string, now time.Time) error {
	if i.Status == ItemStatusDiscontinued {
		return fmt.Errorf("%w: artículo ya descontinuado", domain.ErrInvalidState)
	}
	i.Status = ItemStatusDiscontinued
	i.touch(by, now)
	return nil
}

// IsActive indica si el artículo admite nuevos movimientos y reservas.
func (i *StockItem) IsActive() bool { return i.Status == ItemStatusActive }

func (i *StockItem) touch(by string, now time.Time) {
	i.UpdatedBy = by
	i.UpdatedAt = now
}

func validatePrices(cost, price decimal.Decimal) error {
	if cost.IsNegative() || price.IsNegative() {
		return fmt.Errorf("%w: costo y precio no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}
