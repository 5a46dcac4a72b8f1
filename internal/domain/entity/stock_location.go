package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// StockLocation representa una bodega o ubicación (código único por tenant).
// Las ubicaciones virtuales se usan para servicios. Es dato de referencia puro.
type StockLocation struct {
	ID          string
	TenantID    string
	Code        string
	Name        string
	Description string
	IsVirtual   bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewStockLocation construye una ubicación activa.
func NewStockLocation(tenantID, code, name, description string, isVirtual bool, now time.Time) (*StockLocation, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant requerido", domain.ErrInvalidInput)
	}
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: código y nombre son requeridos", domain.ErrInvalidInput)
	}
	return &StockLocation{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Code:        strings.ToUpper(code),
		Name:        name,
		Description: description,
		IsVirtual:   isVirtual,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update cambia nombre y descripción (nil = sin cambio).
func (l *StockLocation) Update(name, description *string, now time.Time) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if name != nil {
		l.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		l.Description = *description
	}
	l.UpdatedAt = now
	return nil
}

// Activate habilita la ubicación.
func (l *StockLocation) Activate(now time.Time) {
	l.IsActive = true
	l.UpdatedAt = now
}

// Deactivate deshabilita la ubicación para nuevos movimientos.
func (l *StockLocation) Deactivate(now time.Time) {
	l.IsActive = false
	l.UpdatedAt = now
}
