package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	"github.com/jhoicas/stock-ledger-api/internal/worker"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Proceso aparte que vence las reservas con fecha de expiración pasada.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name + "-sweeper",
	})
	if cfg.Stock.Storage != config.StoragePostgres {
		log.Fatal().Str("storage", cfg.Stock.Storage).Msg("el barrido separado requiere STOCK_STORAGE=postgres; con memoria lo ejecuta la API")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, log, bootstrap.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios de stock")
	}
	defer svc.Close()

	interval := time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second
	worker.NewExpirySweeper(svc.Reservations, interval, cfg.Sweeper.BatchSize, log.Zerolog()).Run(ctx)

	log.Info().Msg("barrido detenido")
}
