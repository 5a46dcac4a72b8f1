package stock

import (
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ApprovalPolicy define qué tipos de movimiento nacen pendientes de aprobación.
// Los ajustes siempre requieren aprobación y no aparecen aquí.
type ApprovalPolicy struct {
	InRequiresApproval       bool
	OutRequiresApproval      bool
	TransferRequiresApproval bool
	// AllowOverride permite que el llamador elija requires_approval por movimiento.
	AllowOverride bool
}

// DefaultApprovalPolicy entradas y salidas auto-aprobadas, traslados con revisión.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{TransferRequiresApproval: true, AllowOverride: true}
}

// Resolve decide requiresApproval para un tipo de movimiento y un valor opcional del llamador.
func (p ApprovalPolicy) Resolve(movementType string, requested *bool) (bool, error) {
	var def bool
	switch movementType {
	case entity.MovementTypeIn:
		def = p.InRequiresApproval
	case entity.MovementTypeOut:
		def = p.OutRequiresApproval
	case entity.MovementTypeTransfer:
		def = p.TransferRequiresApproval
	case entity.MovementTypeAdjustment:
		return true, nil
	default:
		return false, fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, movementType)
	}
	if requested == nil || *requested == def {
		return def, nil
	}
	if !p.AllowOverride {
		return false, fmt.Errorf("%w: requires_approval para %s está fijado por política en %t", domain.ErrInvalidInput, movementType, def)
	}
	return *requested, nil
}
