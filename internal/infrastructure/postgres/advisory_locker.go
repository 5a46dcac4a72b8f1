package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

var _ stock.StockLocker = (*AdvisoryLocker)(nil)

// AdvisoryLocker toma pg_advisory_xact_lock sobre la llave tenant|artículo|ubicación.
// El bloqueo se libera solo al terminar la transacción, por eso q debe ser una tx.
type AdvisoryLocker struct {
	q Querier
}

// NewAdvisoryLocker construye el locker sobre la tx.
func NewAdvisoryLocker(q Querier) *AdvisoryLocker {
	return &AdvisoryLocker{q: q}
}

// LockStock bloquea hasta obtener la llave o hasta que ctx se cancele.
func (l *AdvisoryLocker) LockStock(ctx context.Context, tenantID, itemID, locationID string) error {
	key := tenantID + "|" + itemID + "|" + locationID
	if _, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("lock stock %s: %w", key, err)
	}
	return nil
}
