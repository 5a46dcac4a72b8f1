package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

var (
	manager = stock.Actor{TenantID: "tenant-1", UserID: "user-bodega", Role: "bodeguero"}
	viewer  = stock.Actor{TenantID: "tenant-1", UserID: "user-ventas", Role: "vendedor"}
)

// recorder publicador en memoria para verificar los eventos emitidos.
type recorder struct {
	mu     sync.Mutex
	events []stock.Event
}

func (r *recorder) Publish(_ context.Context, e stock.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture arma los casos de uso sobre el store en memoria con reloj controlado.
type fixture struct {
	store        *memory.Store
	events       *recorder
	clock        time.Time
	catalog      *stock.CatalogUseCase
	ledger       *stock.LedgerUseCase
	balances     *stock.BalanceUseCase
	reservations *stock.ReservationUseCase
}

func newFixture(t *testing.T, policy stock.ApprovalPolicy) *fixture {
	t.Helper()
	return newFixtureTx(t, policy, nil)
}

// newFixtureTx igual que newFixture, con wrap envolviendo el runner de transacciones.
func newFixtureTx(t *testing.T, policy stock.ApprovalPolicy, wrap func(stock.TxRunner) stock.TxRunner) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.New(),
		events: &recorder{},
		clock:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
	var tx stock.TxRunner = f.store
	if wrap != nil {
		tx = wrap(tx)
	}
	d := stock.Deps{
		Tx:       tx,
		Repos:    f.store.Repos(),
		Auth:     stock.NewRoleAuthorizer([]string{"admin", "bodeguero"}, []string{"vendedor"}),
		Events:   stock.NewEventDispatcher(zerolog.Nop(), f.events),
		Policy:   policy,
		Settings: stock.DefaultSettings(),
		Now:      func() time.Time { return f.clock },
	}
	f.catalog = stock.NewCatalogUseCase(d)
	f.ledger = stock.NewLedgerUseCase(d)
	f.balances = stock.NewBalanceUseCase(d, nil)
	f.reservations = stock.NewReservationUseCase(d)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) item(t *testing.T, sku string) string {
	t.Helper()
	it, err := f.catalog.CreateItem(context.Background(), manager, dto.CreateItemRequest{
		SKU: sku, Name: "Artículo " + sku, Category: "Product",
		UnitCost: dec("10"), UnitPrice: dec("15"),
	})
	require.NoError(t, err)
	return it.ID
}

func (f *fixture) location(t *testing.T, code string) string {
	t.Helper()
	loc, err := f.catalog.CreateLocation(context.Background(), manager, dto.CreateLocationRequest{Code: code, Name: "Bodega " + code})
	require.NoError(t, err)
	return loc.ID
}

// receive registra una entrada auto-aprobada.
func (f *fixture) receive(t *testing.T, itemID, locID, qty string) {
	t.Helper()
	no := false
	_, err := f.ledger.CreateIn(context.Background(), manager, dto.CreateInMovementRequest{
		ItemID: itemID, ToLocationID: locID, Quantity: dec(qty), Reason: "compra", RequiresApproval: &no,
	})
	require.NoError(t, err)
}

func (f *fixture) balanceAt(t *testing.T, itemID, locID string) decimal.Decimal {
	t.Helper()
	b, err := f.balances.GetBalanceAtLocation(context.Background(), viewer, itemID, locID)
	require.NoError(t, err)
	return b.Balance
}

func (f *fixture) available(t *testing.T, itemID, locID string) decimal.Decimal {
	t.Helper()
	a, err := f.balances.GetAvailable(context.Background(), viewer, itemID, locID)
	require.NoError(t, err)
	return a.Available
}
