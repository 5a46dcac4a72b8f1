// Package bootstrap arma los casos de uso de stock a partir de la configuración:
// almacenamiento, publicadores de eventos y políticas. Lo comparten cmd/api y cmd/sweeper.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/audit"
	stockkafka "github.com/jhoicas/stock-ledger-api/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/ws"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Options piezas opcionales según el proceso.
type Options struct {
	LiveNotifications bool // crea el hub websocket (solo la API)
	Reports           bool // crea el generador PDF
}

// Services casos de uso listos para usar más lo que el proceso debe arrancar o cerrar.
type Services struct {
	Catalog      *stock.CatalogUseCase
	Ledger       *stock.LedgerUseCase
	Reservations *stock.ReservationUseCase
	Balances     *stock.BalanceUseCase
	Auth         *stock.RoleAuthorizer
	Hub          *ws.Hub // nil si no se pidió LiveNotifications

	closers []func()
}

// Close libera pool y productores en orden inverso.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Build conecta el almacenamiento configurado y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*Services, error) {
	s := &Services{}

	var (
		tx    stock.TxRunner
		repos stock.Repos
	)
	switch cfg.Stock.Storage {
	case config.StorageMemory:
		store := memory.New()
		tx, repos = store, store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				s.Close()
				return nil, err
			}
			log.Info().Msg("esquema de stock aplicado")
		}
		tx, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	default:
		return nil, fmt.Errorf("almacenamiento no soportado: %q", cfg.Stock.Storage)
	}

	publishers := []stock.EventPublisher{audit.NewLogger(log.Zerolog())}
	if cfg.Kafka.Enabled() {
		p := stockkafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.QueueSize, log.Component("kafka"))
		publishers = append(publishers, p)
		s.closers = append(s.closers, func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar productor kafka")
			}
		})
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos de stock hacia kafka")
	}
	if opts.LiveNotifications {
		s.Hub = ws.NewHub(log.Component("ws"))
		publishers = append(publishers, s.Hub)
	}

	s.Auth = stock.NewRoleAuthorizer(cfg.Stock.ManageRoles, cfg.Stock.ViewRoles)
	d := stock.Deps{
		Tx:     tx,
		Repos:  repos,
		Auth:   s.Auth,
		Events: stock.NewEventDispatcher(log.Component("events"), publishers...),
		Policy: stock.ApprovalPolicy{
			InRequiresApproval:       cfg.Stock.ApprovalIn,
			OutRequiresApproval:      cfg.Stock.ApprovalOut,
			TransferRequiresApproval: cfg.Stock.ApprovalTransfer,
			AllowOverride:            cfg.Stock.ApprovalAllowOverride,
		},
		Settings: stock.Settings{
			DefaultCurrency: cfg.Stock.DefaultCurrency,
			ConflictRetries: cfg.Stock.ConflictRetries,
			HistoryMaxLimit: cfg.Stock.HistoryMaxLimit,
		},
	}

	var renderer stock.BalanceReportRenderer
	if opts.Reports {
		renderer = infrapdf.NewBalanceReportGenerator(cfg.App.Name)
	}
	s.Catalog = stock.NewCatalogUseCase(d)
	s.Ledger = stock.NewLedgerUseCase(d)
	s.Reservations = stock.NewReservationUseCase(d)
	s.Balances = stock.NewBalanceUseCase(d, renderer)
	return s, nil
}
