// Package worker procesos de fondo del libro de existencias.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Expirer lo que el barrido usa de stock.ReservationUseCase.
type Expirer interface {
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

// ExpirySweeper vence periódicamente las reservas cuya fecha de expiración pasó.
type ExpirySweeper struct {
	uc       Expirer
	interval time.Duration
	batch    int
	now      func() time.Time
	log      zerolog.Logger
}

// NewExpirySweeper construye el barrido. batch <= 0 usa 200.
func NewExpirySweeper(uc Expirer, interval time.Duration, batch int, log zerolog.Logger) *ExpirySweeper {
	if batch <= 0 {
		batch = 200
	}
	return &ExpirySweeper{
		uc:       uc,
		interval: interval,
		batch:    batch,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// Run barre al arrancar y luego en cada intervalo hasta que ctx se cancela.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Int("batch", s.batch).Msg("barrido de reservas iniciado")
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("barrido de reservas detenido")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep vence lotes mientras sigan llegando lotes completos. Devuelve el total vencido.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := s.uc.ExpireDue(ctx, s.now(), s.batch)
		total += n
		if err != nil {
			s.log.Error().Err(err).Int("expired", n).Msg("barrido de reservas con errores")
			break
		}
		if n < s.batch {
			break
		}
	}
	if total > 0 {
		s.log.Info().Int("expired", total).Msg("reservas vencidas")
	}
	return total
}
