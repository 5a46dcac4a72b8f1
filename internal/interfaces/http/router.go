package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/ws"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog      *stock.CatalogUseCase
	Ledger       *stock.LedgerUseCase
	Reservations *stock.ReservationUseCase
	Balances     *stock.BalanceUseCase
	Auth         stock.Authorizer
	Hub          *ws.Hub // nil = sin notificaciones en vivo
	Tokens       *jwt.Verifier
	// Roles con acceso a /api/stock; el detalle gestionar/consultar lo decide Auth.
	Roles []string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	st := api.Group("/stock", AuthMiddleware(deps.Tokens), RequireRole(deps.Roles...))

	items := st.Group("/items")
	itemHandler := NewItemHandler(deps.Catalog)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/sku/:sku", itemHandler.GetBySKU)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Put("/:id/levels", itemHandler.SetLevels)
	items.Post("/:id/activate", itemHandler.Activate)
	items.Post("/:id/deactivate", itemHandler.Deactivate)
	items.Post("/:id/discontinue", itemHandler.Discontinue)

	locations := st.Group("/locations")
	locationHandler := NewLocationHandler(deps.Catalog)
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", locationHandler.Update)
	locations.Post("/:id/activate", locationHandler.Activate)
	locations.Post("/:id/deactivate", locationHandler.Deactivate)

	balanceHandler := NewBalanceHandler(deps.Balances)
	st.Get("/balances", balanceHandler.GetSummary)
	st.Get("/balances/report.pdf", balanceHandler.GetReport)
	st.Get("/balances/:item_id", balanceHandler.GetBalance)
	st.Get("/balances/:item_id/locations/:location_id", balanceHandler.GetBalanceAtLocation)
	st.Get("/available/:item_id", balanceHandler.GetAvailable)
	st.Get("/replenishment", balanceHandler.GetReplenishment)

	movements := st.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger)
	movements.Post("/in", movementHandler.CreateIn)
	movements.Post("/out", movementHandler.CreateOut)
	movements.Post("/transfer", movementHandler.CreateTransfer)
	movements.Post("/adjustment", movementHandler.CreateAdjustment)
	movements.Get("/", movementHandler.History)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Post("/:id/approve", movementHandler.Approve)
	movements.Post("/:id/reject", movementHandler.Reject)
	movements.Post("/:id/cancel", movementHandler.Cancel)

	reservations := st.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations)
	reservations.Post("/", reservationHandler.Reserve)
	reservations.Get("/active", reservationHandler.Active)
	reservations.Get("/tender/:tender_id", reservationHandler.ForTender)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Get("/:id/movements", reservationHandler.Movements)
	reservations.Post("/:id/issue", reservationHandler.Issue)
	reservations.Post("/:id/release", reservationHandler.Release)
	reservations.Post("/:id/expire", reservationHandler.Expire)

	// Notificaciones en vivo (token por query string)
	if deps.Hub != nil {
		app.Get("/ws/stock", WSUpgrade(deps.Tokens), requireViewer(deps.Auth), StockStream(deps.Hub))
	}
}
