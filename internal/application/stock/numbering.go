package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Prefijos de numeración por tenant.
const (
	MovementNumberPrefix    = "MOV"
	ReservationNumberPrefix = "RES"
)

// nextNumber asigna PREFIJO-AAAA-NNNNNN dentro de la transacción del caller.
func nextNumber(ctx context.Context, seq repository.SequenceRepository, tenantID, prefix string, now time.Time) (string, error) {
	year := now.Year()
	n, err := seq.Next(ctx, tenantID, prefix, year)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, year, n), nil
}
