// Package audit deja una línea estructurada por cada cambio confirmado de stock.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

var _ stock.EventPublisher = (*Logger)(nil)

// Logger publicador de auditoría sobre zerolog (component=audit).
type Logger struct {
	log zerolog.Logger
}

// NewLogger construye el publicador a partir del logger de la aplicación.
func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{log: base.With().Str("component", "audit").Logger()}
}

// Publish escribe el evento con su payload completo. Nunca falla.
func (l *Logger) Publish(_ context.Context, e stock.Event) error {
	l.log.Info().
		Str("event", e.Type).
		Str("tenant_id", e.TenantID).
		Str("entity_id", e.EntityID).
		Str("actor_id", e.ActorID).
		Time("occurred_at", e.OccurredAt).
		Interface("payload", e.Payload).
		Msg("stock audit")
	return nil
}
