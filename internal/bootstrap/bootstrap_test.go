package bootstrap_test

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "stock-ledger-test"},
		Stock: config.StockConfig{
			Storage:          config.StorageMemory,
			ApprovalOut:      true,
			DefaultCurrency:  "USD",
			ConflictRetries:  3,
			HistoryMaxLimit:  50,
			ManageRoles:      []string{"jefe"},
			ViewRoles:        []string{"auditor"},
			ApprovalTransfer: true,
		},
	}
}

func TestBuild_MemoriaConPoliticaConfigurada(t *testing.T) {
	log := logger.New(logger.Config{Env: "production", Level: "error", Out: io.Discard})
	svc, err := bootstrap.Build(context.Background(), memoryConfig(), log, bootstrap.Options{LiveNotifications: true, Reports: true})
	require.NoError(t, err)
	defer svc.Close()

	require.NotNil(t, svc.Hub)
	ctx := context.Background()
	jefe := stock.Actor{TenantID: "t1", UserID: "u1", Role: "jefe"}

	item, err := svc.Catalog.CreateItem(ctx, jefe, dto.CreateItemRequest{SKU: "A", Name: "A", Category: "Product"})
	require.NoError(t, err)
	assert.Equal(t, "USD", item.Currency, "moneda por defecto configurada")

	loc, err := svc.Catalog.CreateLocation(ctx, jefe, dto.CreateLocationRequest{Code: "L1", Name: "L1"})
	require.NoError(t, err)
	_, err = svc.Ledger.CreateIn(ctx, jefe, dto.CreateInMovementRequest{ItemID: item.ID, ToLocationID: loc.ID, Quantity: decimal.NewFromInt(5), Reason: "r"})
	require.NoError(t, err)

	out, err := svc.Ledger.CreateOut(ctx, jefe, dto.CreateOutMovementRequest{ItemID: item.ID, FromLocationID: loc.ID, Quantity: decimal.NewFromInt(1), Reason: "r"})
	require.NoError(t, err)
	assert.Equal(t, "Pending", out.Status, "STOCK_APPROVAL_OUT=true")

	pdf, err := svc.Balances.BalanceReport(ctx, stock.Actor{TenantID: "t1", UserID: "u2", Role: "auditor"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestBuild_AlmacenamientoDesconocido(t *testing.T) {
	cfg := memoryConfig()
	cfg.Stock.Storage = "redis"
	log := logger.New(logger.Config{Level: "error", Out: io.Discard})
	_, err := bootstrap.Build(context.Background(), cfg, log, bootstrap.Options{})
	assert.Error(t, err)
}
