package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repos reciben cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isTxConflict indica deadlock (40P01), fallo de serialización (40001) o
// lock_timeout vencido (55P03).
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40P01", "40001", "55P03":
			return true
		}
	}
	return false
}

// asConflict envuelve en domain.ErrConflict los errores de concurrencia de Postgres
// para que el caso de uso reintente; el resto pasa igual.
func asConflict(err error) error {
	if err == nil || errors.Is(err, domain.ErrConflict) || !isTxConflict(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}

// nullString guarda "" como NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// isUUID indica si id es un UUID válido; un id mal formado se trata como inexistente.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
