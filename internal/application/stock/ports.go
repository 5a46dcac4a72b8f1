package stock

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockLocker serializa las operaciones que calculan el disponible y luego
// escriben, por llave (tenant, artículo, ubicación). El bloqueo dura hasta el
// fin de la transacción que lo tomó.
type StockLocker interface {
	LockStock(ctx context.Context, tenantID, itemID, locationID string) error
}

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Items        repository.StockItemRepository
	Locations    repository.StockLocationRepository
	Movements    repository.StockMovementRepository
	Reservations repository.StockReservationRepository
	Sequences    repository.SequenceRepository
	Locker       StockLocker
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// BalanceReportRenderer genera el documento del resumen de saldos (PDF).
type BalanceReportRenderer interface {
	RenderBalanceSummary(title string, generatedAt time.Time, summary *dto.BalanceSummaryResponse) ([]byte, error)
}
