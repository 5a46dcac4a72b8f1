package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Se envuelven con fmt.Errorf("%w: detalle", ErrX) y se comparan con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidState      = errors.New("transición no permitida en el estado actual")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto de concurrencia, reintentar")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// IsRetryable indica si el error es un conflicto optimista: no hubo cambios y
// el caller puede reintentar un número acotado de veces.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
