package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/ws"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// stockAPI app Fiber completa sobre el store en memoria.
type stockAPI struct {
	t   *testing.T
	app *fiber.App
}

func newStockAPI(t *testing.T) *stockAPI {
	t.Helper()
	store := memory.New()
	auth := stock.NewRoleAuthorizer([]string{"admin", "bodeguero"}, []string{"vendedor"})
	d := stock.Deps{
		Tx:       store,
		Repos:    store.Repos(),
		Auth:     auth,
		Events:   stock.NewEventDispatcher(zerolog.Nop()),
		Policy:   stock.DefaultApprovalPolicy(),
		Settings: stock.DefaultSettings(),
		Now:      func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) },
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Catalog:      stock.NewCatalogUseCase(d),
		Ledger:       stock.NewLedgerUseCase(d),
		Reservations: stock.NewReservationUseCase(d),
		Balances:     stock.NewBalanceUseCase(d, pdf.NewBalanceReportGenerator("test")),
		Auth:         auth,
		Hub:          ws.NewHub(zerolog.Nop()),
		Tokens:       testTokens,
		Roles:        []string{"admin", "bodeguero", "vendedor"},
	})
	return &stockAPI{t: t, app: app}
}

// do envía la petición con el rol indicado y devuelve status y cuerpo.
func (s *stockAPI) do(role, method, path string, body any) (int, []byte) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(s.t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// seed crea artículo y ubicación y registra una entrada de 100.
func (s *stockAPI) seed() (itemID, locationID string) {
	s.t.Helper()
	status, raw := s.do("bodeguero", http.MethodPost, "/api/stock/items", map[string]any{
		"sku": "TOR-01", "name": "Tornillo", "category": "Product", "unit_cost": "10", "unit_price": "15",
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	item := decode[dto.ItemResponse](s.t, raw)

	status, raw = s.do("bodeguero", http.MethodPost, "/api/stock/locations", map[string]any{
		"code": "bod-01", "name": "Bodega central",
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	loc := decode[dto.LocationResponse](s.t, raw)

	status, raw = s.do("bodeguero", http.MethodPost, "/api/stock/movements/in", map[string]any{
		"item_id": item.ID, "to_location_id": loc.ID, "quantity": "100", "reason": "compra",
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	return item.ID, loc.ID
}

func TestStockAPI_EntradaYSaldo(t *testing.T) {
	api := newStockAPI(t)
	itemID, locID := api.seed()

	status, raw := api.do("vendedor", http.MethodGet, "/api/stock/balances/"+itemID+"/locations/"+locID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	bal := decode[dto.BalanceResponse](t, raw)
	assert.Equal(t, "100", bal.Balance.String())

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/items/sku/TOR-01", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, itemID, decode[dto.ItemResponse](t, raw).ID)
}

func TestStockAPI_SalidaSinStock_409(t *testing.T) {
	api := newStockAPI(t)
	itemID, locID := api.seed()

	status, raw := api.do("bodeguero", http.MethodPost, "/api/stock/movements/out", map[string]any{
		"item_id": itemID, "from_location_id": locID, "quantity": "101", "reason": "venta",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, raw).Code)
}

func TestStockAPI_ValidacionDeCuerpo_400(t *testing.T) {
	api := newStockAPI(t)
	itemID, locID := api.seed()

	status, raw := api.do("bodeguero", http.MethodPost, "/api/stock/movements/out", map[string]any{
		"item_id": itemID, "from_location_id": locID, "quantity": "0", "reason": "venta",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	body := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "quantity")
	assert.Contains(t, body.Fields, dto.FieldError{Field: "quantity", Rule: "gt", Param: "0"})

	status, _ = api.do("bodeguero", http.MethodPost, "/api/stock/movements/transfer", map[string]any{
		"item_id": itemID, "from_location_id": locID, "to_location_id": locID, "quantity": "1", "reason": "x",
	})
	assert.Equal(t, http.StatusBadRequest, status, "origen igual a destino")
}

func TestStockAPI_VendedorNoGestiona_403(t *testing.T) {
	api := newStockAPI(t)
	status, raw := api.do("vendedor", http.MethodPost, "/api/stock/locations", map[string]any{"code": "X", "name": "X"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)

	status, _ = api.do("contador", http.MethodGet, "/api/stock/balances", nil)
	assert.Equal(t, http.StatusForbidden, status, "rol fuera de la lista del grupo")

	status, _ = api.do("", http.MethodGet, "/api/stock/balances", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestStockAPI_NoEncontradoYDuplicado(t *testing.T) {
	api := newStockAPI(t)
	api.seed()

	status, raw := api.do("vendedor", http.MethodGet, "/api/stock/movements/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)

	status, raw = api.do("bodeguero", http.MethodPost, "/api/stock/locations", map[string]any{"code": "BOD-01", "name": "Otra"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, raw).Code)
}

func TestStockAPI_TrasladoPendienteAprobarYEstadoInvalido(t *testing.T) {
	api := newStockAPI(t)
	itemID, locID := api.seed()
	_, raw := api.do("bodeguero", http.MethodPost, "/api/stock/locations", map[string]any{"code": "BOD-02", "name": "Norte"})
	dest := decode[dto.LocationResponse](t, raw)

	status, raw := api.do("bodeguero", http.MethodPost, "/api/stock/movements/transfer", map[string]any{
		"item_id": itemID, "from_location_id": locID, "to_location_id": dest.ID, "quantity": "30", "reason": "reubicar",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	mov := decode[dto.MovementResponse](t, raw)
	assert.Equal(t, "Pending", mov.Status)

	status, raw = api.do("admin", http.MethodPost, "/api/stock/movements/"+mov.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "Approved", decode[dto.MovementResponse](t, raw).Status)

	status, raw = api.do("admin", http.MethodPost, "/api/stock/movements/"+mov.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", decode[dto.ErrorResponse](t, raw).Code)

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/available/"+itemID+"?location_id="+dest.ID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "30", decode[dto.AvailableResponse](t, raw).Available.String())
}

func TestStockAPI_HistorialFechasInvalidas(t *testing.T) {
	api := newStockAPI(t)
	itemID, _ := api.seed()

	status, raw := api.do("vendedor", http.MethodGet, "/api/stock/movements?from=ayer", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUERY", decode[dto.ErrorResponse](t, raw).Code)

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/movements?item_id="+itemID+"&from=2025-01-01T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode[dto.MovementListResponse](t, raw).Items, 1)
}

func TestStockAPI_ReservaEntregaYMovimientos(t *testing.T) {
	api := newStockAPI(t)
	itemID, locID := api.seed()

	status, raw := api.do("bodeguero", http.MethodPost, "/api/stock/reservations", map[string]any{
		"item_id": itemID, "location_id": locID, "quantity": "40", "purpose": "licitación 12", "tender_id": "T-12",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	res := decode[dto.ReservationResponse](t, raw)

	status, raw = api.do("bodeguero", http.MethodPost, "/api/stock/reservations/"+res.ID+"/issue", map[string]any{
		"quantity": "10", "reason": "entrega parcial",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	issued := decode[dto.IssueReservationResponse](t, raw)
	assert.Equal(t, "30", issued.Reservation.QuantityRemaining.String())
	assert.Equal(t, res.ID, issued.Movement.ReservationID)

	status, _ = api.do(stock.RoleSystem, http.MethodPost, "/api/stock/reservations/"+res.ID+"/expire", nil)
	assert.Equal(t, http.StatusForbidden, status, "el rol system no llega por token")

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/reservations/tender/T-12", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode[dto.ReservationListResponse](t, raw).Items, 1)

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/reservations/"+res.ID+"/movements", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode[dto.MovementListResponse](t, raw).Items, 1)

	status, raw = api.do("bodeguero", http.MethodPost, "/api/stock/reservations/"+res.ID+"/release", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "Released", decode[dto.ReservationResponse](t, raw).Status)

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/reservations/active?item_id="+itemID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Empty(t, decode[dto.ReservationListResponse](t, raw).Items)
}

func TestStockAPI_ReportePDF(t *testing.T) {
	api := newStockAPI(t)
	api.seed()

	req := httptest.NewRequest(http.MethodGet, "/api/stock/balances/report.pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestStockAPI_WebsocketSinUpgrade_426(t *testing.T) {
	api := newStockAPI(t)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, "vendedor", testIssuer, testExpMin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws/stock?token="+tok, nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestStockAPI_ListaDeReposicion(t *testing.T) {
	api := newStockAPI(t)
	itemID, locID := api.seed()

	status, raw := api.do("bodeguero", http.MethodPut, "/api/stock/items/"+itemID+"/levels", map[string]any{
		"minimum_level": "50", "reorder_point": "120", "reorder_quantity": "40",
	})
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = api.do("vendedor", http.MethodGet, "/api/stock/replenishment?location_id="+locID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	list := decode[[]dto.ReplenishmentSuggestion](t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, itemID, list[0].ItemID)
	assert.Equal(t, "40", list[0].SuggestedOrderQty.String())
	assert.Equal(t, "400", list[0].EstimatedCost.String())
}
