package stock

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Tipos de evento emitidos después de cada escritura confirmada.
const (
	EventItemCreated         = "stock.item.created"
	EventItemUpdated         = "stock.item.updated"
	EventLocationCreated     = "stock.location.created"
	EventLocationUpdated     = "stock.location.updated"
	EventMovementCreated     = "stock.movement.created"
	EventMovementApproved    = "stock.movement.approved"
	EventMovementRejected    = "stock.movement.rejected"
	EventMovementCancelled   = "stock.movement.cancelled"
	EventReservationCreated  = "stock.reservation.created"
	EventReservationIssued   = "stock.reservation.issued"
	EventReservationReleased = "stock.reservation.released"
	EventReservationExpired  = "stock.reservation.expired"
)

// Event notificación de un cambio confirmado. Payload es el DTO de respuesta.
type Event struct {
	Type       string    `json:"type"`
	TenantID   string    `json:"tenant_id"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher colaborador de auditoría o notificación.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// EventDispatcher reparte eventos a todos los publicadores. Un fallo se registra
// y nunca se propaga: la operación de stock ya quedó confirmada.
type EventDispatcher struct {
	publishers []EventPublisher
	log        zerolog.Logger
}

// NewEventDispatcher construye el despachador.
func NewEventDispatcher(log zerolog.Logger, publishers ...EventPublisher) *EventDispatcher {
	return &EventDispatcher{publishers: publishers, log: log}
}

// Dispatch publica los eventos en orden.
func (d *EventDispatcher) Dispatch(ctx context.Context, events ...Event) {
	if d == nil {
		return
	}
	for _, e := range events {
		for _, p := range d.publishers {
			if err := p.Publish(ctx, e); err != nil {
				d.log.Warn().Err(err).
					Str("event", e.Type).
					Str("tenant_id", e.TenantID).
					Str("entity_id", e.EntityID).
					Msg("no se pudo publicar evento de stock")
			}
		}
	}
}

func newEvent(typ string, a Actor, entityID string, at time.Time, payload any) Event {
	return Event{Type: typ, TenantID: a.TenantID, EntityID: entityID, ActorID: a.UserID, OccurredAt: at, Payload: payload}
}
