package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

type fakeRenderer struct {
	title   string
	summary *dto.BalanceSummaryResponse
}

func (r *fakeRenderer) RenderBalanceSummary(title string, _ time.Time, s *dto.BalanceSummaryResponse) ([]byte, error) {
	r.title, r.summary = title, s
	return []byte("%PDF-fake"), nil
}

func TestBalance_Disponible_TodasLasUbicaciones(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a, b := f.item(t, "X"), f.location(t, "A"), f.location(t, "B")
	f.receive(t, item, a, "40")
	f.receive(t, item, b, "60")
	f.reserve(t, item, b, "25")

	av, err := f.balances.GetAvailable(ctx, viewer, item, "")
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(av.Balance))
	assert.True(t, dec("25").Equal(av.Reserved))
	assert.True(t, dec("75").Equal(av.Available))

	_, err = f.balances.GetBalance(ctx, viewer, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBalance_Resumen_OmiteServiciosYTotalizaPorMoneda(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "4")
	_, err := f.catalog.SetStockLevels(ctx, manager, item, dto.SetStockLevelsRequest{
		MinimumLevel: dec("5"), ReorderPoint: dec("6"),
	})
	require.NoError(t, err)
	_, err = f.catalog.CreateItem(ctx, manager, dto.CreateItemRequest{
		SKU: "SRV", Name: "Instalación", Category: entity.ItemCategoryService, UnitPrice: dec("1000"),
	})
	require.NoError(t, err)
	_, err = f.catalog.CreateItem(ctx, manager, dto.CreateItemRequest{
		SKU: "USD-1", Name: "Importado", Category: entity.ItemCategoryProduct, Currency: "USD", UnitPrice: dec("2"),
	})
	require.NoError(t, err)

	sum, err := f.balances.GetBalanceSummary(ctx, viewer, "")
	require.NoError(t, err)
	require.Len(t, sum.Items, 2)

	var line dto.BalanceSummaryLine
	for _, l := range sum.Items {
		if l.ItemID == item {
			line = l
		}
	}
	assert.True(t, dec("4").Equal(line.Balance))
	assert.True(t, dec("60").Equal(line.TotalValue), "4 * 15")
	assert.True(t, line.IsBelowMinimum)
	assert.True(t, line.IsAtReorderPoint)
	assert.True(t, dec("60").Equal(sum.Totals["COP"]))
	assert.True(t, sum.Totals["USD"].IsZero())
}

func TestBalance_Reporte(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	item, a := f.item(t, "X"), f.location(t, "A")
	f.receive(t, item, a, "3")

	_, err := f.balances.BalanceReport(ctx, viewer, "")
	assert.Error(t, err, "sin renderer configurado")

	r := &fakeRenderer{}
	uc := stock.NewBalanceUseCase(stock.Deps{
		Repos:    f.store.Repos(),
		Auth:     stock.NewRoleAuthorizer(nil, []string{"vendedor"}),
		Settings: stock.DefaultSettings(),
	}, r)
	pdf, err := uc.BalanceReport(ctx, viewer, a)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Contains(t, r.title, "A")
	require.Len(t, r.summary.Items, 1)
	assert.True(t, dec("3").Equal(r.summary.Items[0].Balance))
}

func TestBalance_Reposicion(t *testing.T) {
	f := newFixture(t, stock.DefaultApprovalPolicy())
	ctx := context.Background()
	low, full, off, a := f.item(t, "LOW"), f.item(t, "FULL"), f.item(t, "OFF"), f.location(t, "A")
	f.receive(t, low, a, "4")
	f.receive(t, full, a, "100")
	f.reserve(t, low, a, "2")
	for _, id := range []string{low, full, off} {
		_, err := f.catalog.SetStockLevels(ctx, manager, id, dto.SetStockLevelsRequest{
			MinimumLevel: dec("5"), ReorderPoint: dec("6"),
		})
		require.NoError(t, err)
	}
	_, err := f.catalog.DeactivateItem(ctx, manager, off)
	require.NoError(t, err)

	list, err := f.balances.GetReplenishmentList(ctx, viewer, a)
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.Equal(t, low, s.ItemID)
	assert.Equal(t, 1, s.Priority)
	assert.True(t, dec("2").Equal(s.Available), "4 - 2 reservado")
	assert.True(t, dec("9").Equal(s.IdealStock), "6 * 1.5")
	assert.True(t, dec("7").Equal(s.SuggestedOrderQty))
	assert.True(t, dec("70").Equal(s.EstimatedCost))
	assert.True(t, s.IsBelowMinimum)

	_, err = f.balances.GetReplenishmentList(ctx, viewer, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
