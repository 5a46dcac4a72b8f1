package repository

import "context"

// SequenceRepository entrega consecutivos por tenant, prefijo y año.
// Se usa dentro de la transacción que escribe el documento numerado.
type SequenceRepository interface {
	Next(ctx context.Context, tenantID, prefix string, year int) (int64, error)
}
