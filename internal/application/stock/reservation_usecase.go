package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ReservationUseCase retiene stock contra usos futuros y lo convierte en salidas.
type ReservationUseCase struct {
	d Deps
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(d Deps) *ReservationUseCase {
	return &ReservationUseCase{d: d}
}

// Reserve crea una reserva si el disponible alcanza. El cálculo y la escritura
// ocurren bajo el bloqueo de (tenant, artículo, ubicación): dos reservas
// concurrentes nunca comprometen más de lo disponible.
func (uc *ReservationUseCase) Reserve(ctx context.Context, a Actor, in dto.ReserveStockRequest) (*dto.ReservationResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	now := uc.d.now()

	var created *entity.StockReservation
	err := uc.d.Tx.Run(ctx, func(r Repos) error {
		if _, err := requireActiveItem(ctx, r, a.TenantID, in.ItemID); err != nil {
			return err
		}
		if _, err := requireActiveLocation(ctx, r, a.TenantID, in.LocationID); err != nil {
			return err
		}
		// Disponible (y su bloqueo) antes del consecutivo: mismo orden que Issue y create.
		if err := ensureAvailable(ctx, r, a.TenantID, in.ItemID, in.LocationID, in.Quantity); err != nil {
			return err
		}
		number, err := nextNumber(ctx, r.Sequences, a.TenantID, ReservationNumberPrefix, now)
		if err != nil {
			return err
		}
		res, err := entity.NewStockReservation(entity.StockReservationInput{
			TenantID:    a.TenantID,
			Number:      number,
			ItemID:      in.ItemID,
			LocationID:  in.LocationID,
			Quantity:    in.Quantity,
			Purpose:     in.Purpose,
			TenderID:    in.TenderID,
			ExpiresAt:   in.ExpiresAt,
			RequestedBy: a.UserID,
		}, now)
		if err != nil {
			return err
		}
		if err := r.Reservations.Create(ctx, res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toReservationResponse(created)
	uc.d.Events.Dispatch(ctx, newEvent(EventReservationCreated, a, created.ID, now, out))
	return out, nil
}

// Issue entrega qty de la reserva: crea una salida aprobada ligada a la reserva
// y actualiza lo entregado en la misma transacción. El disponible no cambia
// porque baja el saldo y baja lo reservado en la misma cantidad.
func (uc *ReservationUseCase) Issue(ctx context.Context, a Actor, id string, in dto.IssueReservationRequest) (*dto.IssueReservationResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	var (
		res *entity.StockReservation
		mov *entity.StockMovement
		now time.Time
	)
	err := withConflictRetry(ctx, uc.d.Settings.ConflictRetries, func() error {
		return uc.d.Tx.Run(ctx, func(r Repos) error {
			current, err := uc.lockedReservation(ctx, r, a.TenantID, id)
			if err != nil {
				return err
			}
			expected := current.Version
			now = uc.d.now()
			if err := current.RecordIssue(in.Quantity, now); err != nil {
				return err
			}
			item, err := loadItem(ctx, r, a.TenantID, current.ItemID)
			if err != nil {
				return err
			}
			number, err := nextNumber(ctx, r.Sequences, a.TenantID, MovementNumberPrefix, now)
			if err != nil {
				return err
			}
			out, err := entity.NewOutMovement(entity.MovementInput{
				TenantID:    a.TenantID,
				Number:      number,
				ItemID:      current.ItemID,
				Quantity:    in.Quantity,
				UnitCost:    item.UnitCost,
				Reason:      in.Reason,
				Notes:       in.Notes,
				InitiatedBy: a.UserID,
				Links:       entity.MovementLinks{TenderID: current.TenderID, ReservationID: current.ID},
			}, current.LocationID, false, now)
			if err != nil {
				return err
			}
			if err := r.Movements.Create(ctx, out); err != nil {
				return err
			}
			if err := r.Reservations.UpdateTransition(ctx, current, expected); err != nil {
				return err
			}
			res, mov = current, out
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resOut := toReservationResponse(res)
	movOut := toMovementResponse(mov)
	uc.d.Events.Dispatch(ctx,
		newEvent(EventMovementCreated, a, mov.ID, now, movOut),
		newEvent(EventReservationIssued, a, res.ID, now, resOut),
	)
	return &dto.IssueReservationResponse{Reservation: *resOut, Movement: *movOut}, nil
}

// lockedReservation carga la reserva, toma el bloqueo de su llave y la vuelve a
// leer para operar sobre el estado que ya no puede cambiar bajo el bloqueo.
func (uc *ReservationUseCase) lockedReservation(ctx context.Context, r Repos, tenantID, id string) (*entity.StockReservation, error) {
	res, err := loadReservation(ctx, r, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := r.Locker.LockStock(ctx, tenantID, res.ItemID, res.LocationID); err != nil {
		return nil, err
	}
	return loadReservation(ctx, r, tenantID, id)
}

func loadReservation(ctx context.Context, r Repos, tenantID, id string) (*entity.StockReservation, error) {
	res, err := r.Reservations.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, id)
	}
	return res, nil
}

// Release libera la reserva; lo pendiente vuelve al disponible.
func (uc *ReservationUseCase) Release(ctx context.Context, a Actor, id string, in dto.ReleaseReservationRequest) (*dto.ReservationResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	return uc.transition(ctx, a, id, EventReservationReleased, func(res *entity.StockReservation, now time.Time) error {
		return res.Release(a.UserID, in.Reason, now)
	})
}

// Expire vence una reserva cuya fecha de expiración ya pasó. El actor del
// sistema no pasa por el autorizador.
func (uc *ReservationUseCase) Expire(ctx context.Context, a Actor, id string) (*dto.ReservationResponse, error) {
	if a.IsSystem() {
		if a.TenantID == "" {
			return nil, domain.ErrUnauthorized
		}
	} else if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	return uc.transition(ctx, a, id, EventReservationExpired, func(res *entity.StockReservation, now time.Time) error {
		return res.Expire(now)
	})
}

func (uc *ReservationUseCase) transition(ctx context.Context, a Actor, id, eventType string, fn func(*entity.StockReservation, time.Time) error) (*dto.ReservationResponse, error) {
	var (
		updated *entity.StockReservation
		at      time.Time
	)
	err := withConflictRetry(ctx, uc.d.Settings.ConflictRetries, func() error {
		return uc.d.Tx.Run(ctx, func(r Repos) error {
			res, err := loadReservation(ctx, r, a.TenantID, id)
			if err != nil {
				return err
			}
			expected := res.Version
			at = uc.d.now()
			if err := fn(res, at); err != nil {
				return err
			}
			if err := r.Reservations.UpdateTransition(ctx, res, expected); err != nil {
				return err
			}
			updated = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	out := toReservationResponse(updated)
	uc.d.Events.Dispatch(ctx, newEvent(eventType, a, updated.ID, at, out))
	return out, nil
}

// ExpireDue vence hasta limit reservas con expires_at < now, de cualquier tenant.
// Las que otro proceso ya cambió se omiten. Devuelve cuántas venció.
func (uc *ReservationUseCase) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := uc.d.Repos.Reservations.ListExpired(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	var (
		expired int
		errs    []error
	)
	for _, res := range due {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		_, err := uc.Expire(ctx, SystemActor(res.TenantID), res.ID)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
			// ya emitida, liberada o vencida por otro llamador
		default:
			errs = append(errs, fmt.Errorf("expire %s: %w", res.Number, err))
		}
	}
	return expired, errors.Join(errs...)
}

// GetReservation obtiene una reserva por ID.
func (uc *ReservationUseCase) GetReservation(ctx context.Context, a Actor, id string) (*dto.ReservationResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	res, err := loadReservation(ctx, uc.d.Repos, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	return toReservationResponse(res), nil
}

// GetReservationsForTender reservas (cualquier estado) ligadas a una licitación.
func (uc *ReservationUseCase) GetReservationsForTender(ctx context.Context, a Actor, tenderID string) (*dto.ReservationListResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Reservations.ListByTender(ctx, a.TenantID, tenderID)
	if err != nil {
		return nil, err
	}
	return toReservationList(list), nil
}

// GetActiveReservations reservas en estado Reserved, filtrables por artículo y ubicación.
func (uc *ReservationUseCase) GetActiveReservations(ctx context.Context, a Actor, itemID, locationID string) (*dto.ReservationListResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Reservations.ListActive(ctx, a.TenantID, repository.ReservationFilter{ItemID: itemID, LocationID: locationID})
	if err != nil {
		return nil, err
	}
	return toReservationList(list), nil
}

// GetReservationMovements salidas creadas por las entregas de una reserva.
func (uc *ReservationUseCase) GetReservationMovements(ctx context.Context, a Actor, id string) (*dto.MovementListResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	if _, err := loadReservation(ctx, uc.d.Repos, a.TenantID, id); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Movements.ListByReservation(ctx, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	return toMovementList(list), nil
}
