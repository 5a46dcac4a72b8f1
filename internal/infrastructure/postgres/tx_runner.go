package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// Ensure TxRunner implements stock.TxRunner.
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos stock.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return asConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return asConflict(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// NewRepos arma los repositorios sobre q. Con el pool sirve para lecturas;
// LockStock solo tiene efecto real dentro de una tx.
func NewRepos(q Querier) stock.Repos {
	return stock.Repos{
		Items:        NewStockItemRepository(q),
		Locations:    NewStockLocationRepository(q),
		Movements:    NewStockMovementRepository(q),
		Reservations: NewStockReservationRepository(q),
		Sequences:    NewSequenceRepository(q),
		Locker:       NewAdvisoryLocker(q),
	}
}
