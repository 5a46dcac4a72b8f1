package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func (f *fixture) reserve(t *testing.T, itemID, locID, qty string) *dto.ReservationResponse {
	t.Helper()
	res, err := f.reservations.Reserve(context.Background(), manager, dto.ReserveStockRequest{
		ItemID: itemID, LocationID: locID, Quantity: dec(qty), Purpose: "licitación", TenderID: "tender-9",
	})
	require.NoError(t, err)
	return res
}

func TestReserve_DescuentaDisponibleNoSaldo(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "100")

	res := f.reserve(t, item, a, "30")
	assert.Equal(t, "RES-2025-000001", res.Number)
	assert.Equal(t, entity.ReservationStatusReserved, res.Status)
	assert.True(t, dec("30").Equal(res.QuantityRemaining))

	assert.True(t, dec("100").Equal(f.balanceAt(t, item, a)))
	assert.True(t, dec("70").Equal(f.available(t, item, a)))
	assert.Contains(t, f.events.types(), stock.EventReservationCreated)
}

func TestReserve_SinDisponible(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "10")
	f.reserve(t, item, a, "8")

	_, err := f.reservations.Reserve(context.Background(), manager, dto.ReserveStockRequest{
		ItemID: item, LocationID: a, Quantity: dec("3"), Purpose: "p",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, dec("2").Equal(f.available(t, item, a)))
}

func TestReserve_Invalidos(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "10")
	past := f.clock.Add(-time.Hour)

	cases := map[string]dto.ReserveStockRequest{
		"cantidad cero":   {ItemID: item, LocationID: a, Quantity: decimal.Zero, Purpose: "p"},
		"sin propósito":   {ItemID: item, LocationID: a, Quantity: dec("1")},
		"vence en pasado": {ItemID: item, LocationID: a, Quantity: dec("1"), Purpose: "p", ExpiresAt: &past},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.reservations.Reserve(context.Background(), manager, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestReserve_Concurrente_NuncaSobrecompromete(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "100")

	const n = 20
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.reservations.Reserve(context.Background(), manager, dto.ReserveStockRequest{
				ItemID: item, LocationID: a, Quantity: dec("15"), Purpose: "p",
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, ok, "floor(100/15)")
	avail := f.available(t, item, a)
	assert.True(t, dec("10").Equal(avail), "obtenido %s", avail)
}

func TestIssue_ParcialYTotal(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "100")
	res := f.reserve(t, item, a, "40")

	issued, err := f.reservations.Issue(ctx, manager, res.ID, dto.IssueReservationRequest{Quantity: dec("15"), Reason: "entrega 1"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusReserved, issued.Reservation.Status)
	assert.True(t, dec("25").Equal(issued.Reservation.QuantityRemaining))
	assert.Equal(t, entity.MovementTypeOut, issued.Movement.Type)
	assert.Equal(t, entity.MovementStatusApproved, issued.Movement.Status)
	assert.Equal(t, res.ID, issued.Movement.ReservationID)
	assert.Equal(t, "tender-9", issued.Movement.TenderID)

	assert.True(t, dec("85").Equal(f.balanceAt(t, item, a)))
	assert.True(t, dec("60").Equal(f.available(t, item, a)), "entregar no cambia el disponible")

	_, err = f.reservations.Issue(ctx, manager, res.ID, dto.IssueReservationRequest{Quantity: dec("26"), Reason: "r"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	done, err := f.reservations.Issue(ctx, manager, res.ID, dto.IssueReservationRequest{Quantity: dec("25"), Reason: "entrega 2"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusIssued, done.Reservation.Status)
	assert.NotNil(t, done.Reservation.IssuedAt)

	movs, err := f.reservations.GetReservationMovements(ctx, viewer, res.ID)
	require.NoError(t, err)
	assert.Len(t, movs.Items, 2)

	_, err = f.reservations.Issue(ctx, manager, res.ID, dto.IssueReservationRequest{Quantity: dec("1"), Reason: "r"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	types := f.events.types()
	assert.Contains(t, types, stock.EventReservationIssued)
	assert.Contains(t, types, stock.EventMovementCreated)
}

func TestRelease_DevuelveDisponible(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "50")
	res := f.reserve(t, item, a, "20")
	_, err := f.reservations.Issue(ctx, manager, res.ID, dto.IssueReservationRequest{Quantity: dec("5"), Reason: "r"})
	require.NoError(t, err)

	rel, err := f.reservations.Release(ctx, manager, res.ID, dto.ReleaseReservationRequest{Reason: "cancelada"})
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusReleased, rel.Status)
	assert.Equal(t, manager.UserID, rel.ReleasedBy)
	assert.True(t, dec("45").Equal(f.available(t, item, a)))

	_, err = f.reservations.Release(ctx, manager, res.ID, dto.ReleaseReservationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestExpire_SoloCuandoVencio(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "10")
	exp := f.clock.Add(time.Hour)
	res, err := f.reservations.Reserve(ctx, manager, dto.ReserveStockRequest{
		ItemID: item, LocationID: a, Quantity: dec("4"), Purpose: "p", ExpiresAt: &exp,
	})
	require.NoError(t, err)

	_, err = f.reservations.Expire(ctx, manager, res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	f.clock = exp.Add(time.Minute)
	out, err := f.reservations.Expire(ctx, stock.SystemActor(manager.TenantID), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusExpired, out.Status)
	assert.True(t, dec("10").Equal(f.available(t, item, a)))
}

func TestExpire_RolSystemDelTokenNoEsActorInterno(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "10")
	res := f.reserve(t, item, a, "4")

	forged := stock.Actor{TenantID: manager.TenantID, UserID: "u-externo", Role: stock.RoleSystem}
	assert.False(t, forged.IsSystem())
	assert.True(t, stock.SystemActor(manager.TenantID).IsSystem())

	_, err := f.reservations.Expire(ctx, forged, res.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Ni configurándolo como rol gestor.
	auth := stock.NewRoleAuthorizer([]string{stock.RoleSystem, "admin"}, []string{stock.RoleSystem})
	assert.False(t, auth.CanManageStock(ctx, forged))
	assert.False(t, auth.CanViewStock(ctx, forged))
	assert.True(t, auth.CanManageStock(ctx, stock.Actor{TenantID: "t", UserID: "u", Role: "admin"}))

	assert.True(t, dec("6").Equal(f.available(t, item, a)))
}

func TestExpireDue_BarreTodosLosTenants(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "10")
	soon, later := f.clock.Add(time.Hour), f.clock.Add(48*time.Hour)
	for _, exp := range []*time.Time{&soon, &soon, &later, nil} {
		_, err := f.reservations.Reserve(ctx, manager, dto.ReserveStockRequest{
			ItemID: item, LocationID: a, Quantity: dec("1"), Purpose: "p", ExpiresAt: exp,
		})
		require.NoError(t, err)
	}

	f.clock = soon.Add(time.Second)
	n, err := f.reservations.ExpireDue(ctx, f.clock, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.reservations.ExpireDue(ctx, f.clock, 100)
	require.NoError(t, err)
	assert.Zero(t, n, "idempotente")

	active, err := f.reservations.GetActiveReservations(ctx, viewer, item, "")
	require.NoError(t, err)
	assert.Len(t, active.Items, 2)
	assert.True(t, dec("8").Equal(f.available(t, item, a)))
}

func TestReservas_ConsultasPorLicitacion(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "10")
	r1 := f.reserve(t, item, a, "2")
	f.reserve(t, item, a, "3")
	_, err := f.reservations.Release(ctx, manager, r1.ID, dto.ReleaseReservationRequest{})
	require.NoError(t, err)

	byTender, err := f.reservations.GetReservationsForTender(ctx, viewer, "tender-9")
	require.NoError(t, err)
	assert.Len(t, byTender.Items, 2, "incluye liberadas")

	_, err = f.reservations.GetReservation(ctx, viewer, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other := stock.Actor{TenantID: "tenant-2", UserID: "u", Role: "admin"}
	_, err = f.reservations.GetReservation(ctx, other, r1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "aislado por tenant")
}
