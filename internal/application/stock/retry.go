package stock

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// withConflictRetry repite fn mientras falle con domain.ErrConflict, hasta retries
// reintentos adicionales. Cualquier otro error es terminal.
func withConflictRetry(ctx context.Context, retries int, fn func() error) error {
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if err = fn(); !domain.IsRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
