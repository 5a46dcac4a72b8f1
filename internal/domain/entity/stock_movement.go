package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         = "In"
	MovementTypeOut        = "Out"
	MovementTypeTransfer   = "Transfer"
	MovementTypeAdjustment = "Adjustment"
)

// Estados de aprobación de un movimiento.
const (
	MovementStatusPending   = "Pending"
	MovementStatusApproved  = "Approved"
	MovementStatusRejected  = "Rejected"
	MovementStatusCancelled = "Cancelled"
)

// ValidMovementType indica si el tipo es uno de los soportados.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	}
	return false
}

// ValidMovementStatus indica si el estado es uno de los soportados.
func ValidMovementStatus(s string) bool {
	switch s {
	case MovementStatusPending, MovementStatusApproved, MovementStatusRejected, MovementStatusCancelled:
		return true
	}
	return false
}

// MovementLinks referencias opcionales a entidades externas (licitación, tarea,
// documento) y a la reserva que originó la salida. Son referencias débiles.
type MovementLinks struct {
	TenderID      string
	TaskID        string
	DocumentID    string
	ReservationID string
}

// StockMovement es una entrada del ledger. Se crea con una de las fábricas
// New*Movement; una vez que sale de Pending, cantidad, tipo, artículo y
// ubicaciones quedan congelados y solo se registra la transición terminal.
type StockMovement struct {
	ID               string
	TenantID         string
	Number           string
	Type             string
	Status           string
	ItemID           string
	Quantity         decimal.Decimal // siempre positiva; el signo lo da el tipo
	FromLocationID   string          // vacío si no aplica
	ToLocationID     string          // vacío si no aplica
	Reason           string
	Notes            string
	UnitCost         decimal.Decimal // costo congelado al crear el movimiento
	InitiatedBy      string
	ApprovedBy       string
	ApprovedAt       *time.Time
	RejectedBy       string
	RejectedAt       *time.Time
	RejectionReason  string
	CancelledBy      string
	CancelledAt      *time.Time
	RequiresApproval bool
	Links            MovementLinks
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MovementInput datos comunes a todas las fábricas de movimientos.
type MovementInput struct {
	TenantID    string
	Number      string
	ItemID      string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Reason      string
	Notes       string
	InitiatedBy string
	Links       MovementLinks
}

// NewInMovement crea una entrada hacia toLocationID.
func NewInMovement(in MovementInput, toLocationID string, requiresApproval bool, now time.Time) (*StockMovement, error) {
	if toLocationID == "" {
		return nil, fmt.Errorf("%w: ubicación destino requerida", domain.ErrInvalidInput)
	}
	return newMovement(in, MovementTypeIn, "", toLocationID, requiresApproval, now)
}

// NewOutMovement crea una salida desde fromLocationID. No verifica disponibilidad:
// eso le corresponde al caso de uso bajo el bloqueo del par artículo/ubicación.
func NewOutMovement(in MovementInput, fromLocationID string, requiresApproval bool, now time.Time) (*StockMovement, error) {
	if fromLocationID == "" {
		return nil, fmt.Errorf("%w: ubicación origen requerida", domain.ErrInvalidInput)
	}
	return newMovement(in, MovementTypeOut, fromLocationID, "", requiresApproval, now)
}

// NewTransferMovement crea un traslado entre dos ubicaciones distintas.
func NewTransferMovement(in MovementInput, fromLocationID, toLocationID string, requiresApproval bool, now time.Time) (*StockMovement, error) {
	if fromLocationID == "" || toLocationID == "" {
		return nil, fmt.Errorf("%w: origen y destino requeridos", domain.ErrInvalidInput)
	}
	if fromLocationID == toLocationID {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	return newMovement(in, MovementTypeTransfer, fromLocationID, toLocationID, requiresApproval, now)
}

// NewAdjustmentMovement crea un ajuste; siempre queda Pending y exige Approve.
// isPositive decide si se llena el destino (suma) o el origen (resta).
func NewAdjustmentMovement(in MovementInput, locationID string, isPositive bool, now time.Time) (*StockMovement, error) {
	if locationID == "" {
		return nil, fmt.Errorf("%w: ubicación requerida", domain.ErrInvalidInput)
	}
	from, to := locationID, ""
	if isPositive {
		from, to = "", locationID
	}
	return newMovement(in, MovementTypeAdjustment, from, to, true, now)
}

func newMovement(in MovementInput, typ, from, to string, requiresApproval bool, now time.Time) (*StockMovement, error) {
	if err := validateMovementInput(in); err != nil {
		return nil, err
	}
	m := &StockMovement{
		ID:               uuid.New().String(),
		TenantID:         in.TenantID,
		Number:           in.Number,
		Type:             typ,
		Status:           MovementStatusPending,
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		FromLocationID:   from,
		ToLocationID:     to,
		Reason:           strings.TrimSpace(in.Reason),
		Notes:            in.Notes,
		UnitCost:         in.UnitCost,
		InitiatedBy:      in.InitiatedBy,
		RequiresApproval: requiresApproval,
		Links:            in.Links,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if !requiresApproval {
		// Auto-aprobación: el iniciador queda como aprobador.
		m.Status = MovementStatusApproved
		m.ApprovedBy = in.InitiatedBy
		at := now
		m.ApprovedAt = &at
	}
	return m, nil
}

func validateMovementInput(in MovementInput) error {
	if in.TenantID == "" || in.ItemID == "" {
		return fmt.Errorf("%w: tenant y artículo requeridos", domain.ErrInvalidInput)
	}
	if in.Number == "" {
		return fmt.Errorf("%w: número de movimiento requerido", domain.ErrInvalidInput)
	}
	if in.InitiatedBy == "" {
		return fmt.Errorf("%w: iniciador requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if in.UnitCost.IsNegative() {
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return fmt.Errorf("%w: motivo requerido", domain.ErrInvalidInput)
	}
	return nil
}

// Approve pasa de Pending a Approved.
func (m *StockMovement) Approve(approverID string, now time.Time) error {
	if err := m.requirePending(); err != nil {
		return err
	}
	if approverID == "" {
		return fmt.Errorf("%w: aprobador requerido", domain.ErrInvalidInput)
	}
	at := now
	m.Status = MovementStatusApproved
	m.ApprovedBy = approverID
	m.ApprovedAt = &at
	m.UpdatedAt = now
	return nil
}

// Reject pasa de Pending a Rejected; el motivo es obligatorio.
func (m *StockMovement) Reject(rejecterID, reason string, now time.Time) error {
	if err := m.requirePending(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if rejecterID == "" || reason == "" {
		return fmt.Errorf("%w: responsable y motivo de rechazo requeridos", domain.ErrInvalidInput)
	}
	at := now
	m.Status = MovementStatusRejected
	m.RejectedBy = rejecterID
	m.RejectedAt = &at
	m.RejectionReason = reason
	m.UpdatedAt = now
	return nil
}

// Cancel pasa de Pending a Cancelled. El motivo se agrega a las notas, no las reemplaza.
func (m *StockMovement) Cancel(cancellerID, reason string, now time.Time) error {
	if err := m.requirePending(); err != nil {
		return err
	}
	if cancellerID == "" {
		return fmt.Errorf("%w: responsable de la cancelación requerido", domain.ErrInvalidInput)
	}
	at := now
	m.Status = MovementStatusCancelled
	m.CancelledBy = cancellerID
	m.CancelledAt = &at
	if reason = strings.TrimSpace(reason); reason != "" {
		note := "Cancelado: " + reason
		if m.Notes == "" {
			m.Notes = note
		} else {
			m.Notes = m.Notes + "\n" + note
		}
	}
	m.UpdatedAt = now
	return nil
}

func (m *StockMovement) requirePending() error {
	if m.Status != MovementStatusPending {
		return fmt.Errorf("%w: movimiento %s está %s", domain.ErrInvalidState, m.Number, m.Status)
	}
	return nil
}

// GetEffectiveQuantity devuelve la contribución con signo del movimiento al saldo
// de locationID. Es la única definición de la semántica de saldo:
//   - no aprobado: 0
//   - In: +cantidad (toda la cantidad llega a ToLocationID; no mira el argumento)
//   - Out: -cantidad (sale de FromLocationID; no mira el argumento)
//   - Transfer: +cantidad en destino, -cantidad en origen, 0 en otra ubicación
//   - Adjustment: efectivo solo en la ubicación que esté llena (+ destino, - origen)
//
// Para In/Out el caller debe filtrar antes con Touches.
func (m *StockMovement) GetEffectiveQuantity(locationID string) decimal.Decimal {
	if m.Status != MovementStatusApproved {
		return decimal.Zero
	}
	switch m.Type {
	case MovementTypeIn:
		return m.Quantity
	case MovementTypeOut:
		return m.Quantity.Neg()
	case MovementTypeTransfer:
		switch locationID {
		case m.ToLocationID:
			return m.Quantity
		case m.FromLocationID:
			return m.Quantity.Neg()
		}
		return decimal.Zero
	case MovementTypeAdjustment:
		if m.ToLocationID != "" && locationID == m.ToLocationID {
			return m.Quantity
		}
		if m.FromLocationID != "" && locationID == m.FromLocationID {
			return m.Quantity.Neg()
		}
		return decimal.Zero
	}
	return decimal.Zero
}

// Touches indica si el movimiento involucra la ubicación (origen o destino).
func (m *StockMovement) Touches(locationID string) bool {
	return locationID != "" && (m.FromLocationID == locationID || m.ToLocationID == locationID)
}

// Locations devuelve las ubicaciones no vacías del movimiento.
func (m *StockMovement) Locations() []string {
	out := make([]string, 0, 2)
	if m.FromLocationID != "" {
		out = append(out, m.FromLocationID)
	}
	if m.ToLocationID != "" {
		out = append(out, m.ToLocationID)
	}
	return out
}

// DecreasesStockAt devuelve la ubicación cuyo saldo baja al aprobarse el movimiento
// (Out, Transfer y Adjustment negativo) o "" si el movimiento solo suma.
func (m *StockMovement) DecreasesStockAt() string {
	switch m.Type {
	case MovementTypeOut, MovementTypeTransfer:
		return m.FromLocationID
	case MovementTypeAdjustment:
		if m.ToLocationID == "" {
			return m.FromLocationID
		}
	}
	return ""
}

// TotalValue valor del movimiento al costo congelado (cantidad * costo unitario).
func (m *StockMovement) TotalValue() decimal.Decimal {
	return m.Quantity.Mul(m.UnitCost)
}

// IsTerminal indica si el movimiento ya no admite transiciones.
func (m *StockMovement) IsTerminal() bool {
	return m.Status != MovementStatusPending
}
