package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LedgerUseCase crea movimientos y aplica las transiciones de aprobación.
// Toda ruta que baja stock verifica el disponible bajo el bloqueo de
// (tenant, artículo, ubicación) en la misma transacción que escribe.
type LedgerUseCase struct {
	d Deps
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(d Deps) *LedgerUseCase {
	return &LedgerUseCase{d: d}
}

// movementDraft datos comunes a las cuatro fábricas.
type movementDraft struct {
	typ      string
	itemID   string
	from     string
	to       string
	quantity decimal.Decimal
	unitCost *decimal.Decimal
	reason   string
	notes    string
	links    entity.MovementLinks
	positive bool
	approval *bool
}

// CreateIn registra una entrada.
func (uc *LedgerUseCase) CreateIn(ctx context.Context, a Actor, in dto.CreateInMovementRequest) (*dto.MovementResponse, error) {
	return uc.create(ctx, a, movementDraft{
		typ: entity.MovementTypeIn, itemID: in.ItemID, to: in.ToLocationID,
		quantity: in.Quantity, unitCost: in.UnitCost, reason: in.Reason, notes: in.Notes,
		links: linksFrom(in.MovementLinksRequest), approval: in.RequiresApproval,
	})
}

// CreateOut registra una salida. Si nace aprobada se verifica el disponible.
func (uc *LedgerUseCase) CreateOut(ctx context.Context, a Actor, in dto.CreateOutMovementRequest) (*dto.MovementResponse, error) {
	return uc.create(ctx, a, movementDraft{
		typ: entity.MovementTypeOut, itemID: in.ItemID, from: in.FromLocationID,
		quantity: in.Quantity, unitCost: in.UnitCost, reason: in.Reason, notes: in.Notes,
		links: linksFrom(in.MovementLinksRequest), approval: in.RequiresApproval,
	})
}

// CreateTransfer registra un traslado entre ubicaciones distintas.
func (uc *LedgerUseCase) CreateTransfer(ctx context.Context, a Actor, in dto.CreateTransferMovementRequest) (*dto.MovementResponse, error) {
	return uc.create(ctx, a, movementDraft{
		typ: entity.MovementTypeTransfer, itemID: in.ItemID, from: in.FromLocationID, to: in.ToLocationID,
		quantity: in.Quantity, unitCost: in.UnitCost, reason: in.Reason, notes: in.Notes,
		links: linksFrom(in.MovementLinksRequest), approval: in.RequiresApproval,
	})
}

// CreateAdjustment registra un ajuste; siempre queda Pending sin importar RequiresApproval.
func (uc *LedgerUseCase) CreateAdjustment(ctx context.Context, a Actor, in dto.CreateAdjustmentRequest) (*dto.MovementResponse, error) {
	d := movementDraft{
		typ: entity.MovementTypeAdjustment, itemID: in.ItemID,
		quantity: in.Quantity, unitCost: in.UnitCost, reason: in.Reason, notes: in.Notes,
		links: linksFrom(in.MovementLinksRequest), positive: in.IsPositive,
	}
	if in.IsPositive {
		d.to = in.LocationID
	} else {
		d.from = in.LocationID
	}
	return uc.create(ctx, a, d)
}

func linksFrom(l dto.MovementLinksRequest) entity.MovementLinks {
	return entity.MovementLinks{TenderID: l.TenderID, TaskID: l.TaskID, DocumentID: l.DocumentID}
}

func (uc *LedgerUseCase) create(ctx context.Context, a Actor, d movementDraft) (*dto.MovementResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	requiresApproval, err := uc.d.Policy.Resolve(d.typ, d.approval)
	if err != nil {
		return nil, err
	}
	if !d.quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if d.typ == entity.MovementTypeTransfer && d.from != "" && d.from == d.to {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	now := uc.d.now()

	var created *entity.StockMovement
	err = uc.d.Tx.Run(ctx, func(r Repos) error {
		item, err := requireActiveItem(ctx, r, a.TenantID, d.itemID)
		if err != nil {
			return err
		}
		for _, locID := range []string{d.from, d.to} {
			if locID == "" {
				continue
			}
			if _, err := requireActiveLocation(ctx, r, a.TenantID, locID); err != nil {
				return err
			}
		}
		// El bloqueo de stock va antes del consecutivo, igual que en Issue.
		if loc := d.autoDecreaseAt(requiresApproval); loc != "" {
			if err := r.Locker.LockStock(ctx, a.TenantID, d.itemID, loc); err != nil {
				return err
			}
		}
		number, err := nextNumber(ctx, r.Sequences, a.TenantID, MovementNumberPrefix, now)
		if err != nil {
			return err
		}
		unitCost := item.UnitCost
		if d.unitCost != nil {
			unitCost = *d.unitCost
		}
		input := entity.MovementInput{
			TenantID:    a.TenantID,
			Number:      number,
			ItemID:      item.ID,
			Quantity:    d.quantity,
			UnitCost:    unitCost,
			Reason:      d.reason,
			Notes:       d.notes,
			InitiatedBy: a.UserID,
			Links:       d.links,
		}
		m, err := buildMovement(d, input, requiresApproval, now)
		if err != nil {
			return err
		}
		if m.Status == entity.MovementStatusApproved {
			if loc := m.DecreasesStockAt(); loc != "" {
				if err := ensureAvailable(ctx, r, a.TenantID, m.ItemID, loc, m.Quantity); err != nil {
					return err
				}
			}
		}
		if err := r.Movements.Create(ctx, m); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toMovementResponse(created)
	events := []Event{newEvent(EventMovementCreated, a, created.ID, now, out)}
	if created.Status == entity.MovementStatusApproved {
		events = append(events, newEvent(EventMovementApproved, a, created.ID, now, out))
	}
	uc.d.Events.Dispatch(ctx, events...)
	return out, nil
}

// autoDecreaseAt ubicación donde el movimiento nace aprobado y baja stock; vacío si no aplica.
// Los ajustes siempre nacen Pending.
func (d movementDraft) autoDecreaseAt(requiresApproval bool) string {
	if requiresApproval {
		return ""
	}
	switch d.typ {
	case entity.MovementTypeOut, entity.MovementTypeTransfer:
		return d.from
	}
	return ""
}

func buildMovement(d movementDraft, in entity.MovementInput, requiresApproval bool, now time.Time) (*entity.StockMovement, error) {
	switch d.typ {
	case entity.MovementTypeIn:
		return entity.NewInMovement(in, d.to, requiresApproval, now)
	case entity.MovementTypeOut:
		return entity.NewOutMovement(in, d.from, requiresApproval, now)
	case entity.MovementTypeTransfer:
		return entity.NewTransferMovement(in, d.from, d.to, requiresApproval, now)
	case entity.MovementTypeAdjustment:
		loc := d.to
		if !d.positive {
			loc = d.from
		}
		return entity.NewAdjustmentMovement(in, loc, d.positive, now)
	}
	return nil, fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, d.typ)
}

// Approve aprueba un movimiento pendiente. Si baja stock, verifica el disponible
// bajo bloqueo. Una doble aprobación concurrente falla al segundo con InvalidState.
func (uc *LedgerUseCase) Approve(ctx context.Context, a Actor, id string) (*dto.MovementResponse, error) {
	return uc.transition(ctx, a, id, EventMovementApproved, func(r Repos, m *entity.StockMovement, now time.Time) error {
		if err := m.Approve(a.UserID, now); err != nil {
			return err
		}
		if loc := m.DecreasesStockAt(); loc != "" {
			return ensureAvailable(ctx, r, a.TenantID, m.ItemID, loc, m.Quantity)
		}
		return nil
	})
}

// Reject rechaza un movimiento pendiente con motivo obligatorio.
func (uc *LedgerUseCase) Reject(ctx context.Context, a Actor, id string, in dto.RejectMovementRequest) (*dto.MovementResponse, error) {
	return uc.transition(ctx, a, id, EventMovementRejected, func(_ Repos, m *entity.StockMovement, now time.Time) error {
		return m.Reject(a.UserID, in.Reason, now)
	})
}

// Cancel cancela un movimiento pendiente; el motivo se agrega a las notas.
func (uc *LedgerUseCase) Cancel(ctx context.Context, a Actor, id string, in dto.CancelMovementRequest) (*dto.MovementResponse, error) {
	return uc.transition(ctx, a, id, EventMovementCancelled, func(_ Repos, m *entity.StockMovement, now time.Time) error {
		return m.Cancel(a.UserID, in.Reason, now)
	})
}

// transition carga, aplica fn y guarda con chequeo de versión. Un conflicto se
// reintenta recargando; en el reintento el movimiento ya no está Pending y fn
// devuelve InvalidState.
func (uc *LedgerUseCase) transition(ctx context.Context, a Actor, id, eventType string, fn func(Repos, *entity.StockMovement, time.Time) error) (*dto.MovementResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	var updated *entity.StockMovement
	var at time.Time
	err := withConflictRetry(ctx, uc.d.Settings.ConflictRetries, func() error {
		return uc.d.Tx.Run(ctx, func(r Repos) error {
			m, err := r.Movements.GetByID(ctx, a.TenantID, id)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
			}
			expected := m.Version
			at = uc.d.now()
			if err := fn(r, m, at); err != nil {
				return err
			}
			if err := r.Movements.UpdateTransition(ctx, m, expected); err != nil {
				return err
			}
			updated = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	out := toMovementResponse(updated)
	uc.d.Events.Dispatch(ctx, newEvent(eventType, a, updated.ID, at, out))
	return out, nil
}

// GetMovement obtiene un movimiento por ID.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, a Actor, id string) (*dto.MovementResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	m, err := uc.d.Repos.Movements.GetByID(ctx, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return toMovementResponse(m), nil
}

// GetMovementHistory historial filtrado, más recientes primero.
// Limit 0 o mayor al máximo configurado se acota al máximo.
func (uc *LedgerUseCase) GetMovementHistory(ctx context.Context, a Actor, in dto.MovementHistoryRequest) (*dto.MovementListResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if in.Type != "" && !entity.ValidMovementType(in.Type) {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Status != "" && !entity.ValidMovementStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	limit := in.Limit
	if maxLimit := uc.d.Settings.HistoryMaxLimit; limit <= 0 || (maxLimit > 0 && limit > maxLimit) {
		limit = maxLimit
	}
	list, err := uc.d.Repos.Movements.History(ctx, a.TenantID, repository.MovementFilter{
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		Type:       in.Type,
		Status:     in.Status,
		From:       in.From,
		To:         in.To,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return toMovementList(list), nil
}
