package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos por (tenant, prefijo, año) en stock_sequences.
// Dentro de una tx la fila queda bloqueada hasta el commit, así que dos
// documentos nunca comparten número y un rollback no deja huecos.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar la tx que escribe el documento.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el siguiente consecutivo.
func (r *SequenceRepo) Next(ctx context.Context, tenantID, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO stock_sequences (tenant_id, prefix, year, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, prefix, year)
		DO UPDATE SET last_value = stock_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, tenantID, prefix, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s/%d: %w", prefix, year, err)
	}
	return n, nil
}
