package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/ws"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

// WSUpgrade acepta solo peticiones de upgrade y autentica con ?token=, porque los
// navegadores no envían Authorization en el handshake websocket.
func WSUpgrade(tokens *jwt.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(dto.ErrorResponse{Code: "UPGRADE_REQUIRED", Message: "se requiere websocket"})
		}
		return authenticate(c, tokens, c.Query("token"))
	}
}

// requireViewer corta el handshake si el rol no puede consultar stock.
func requireViewer(auth stock.Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.CanViewStock(c.Context(), ActorFrom(c)) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin acceso a stock"})
		}
		return c.Next()
	}
}

// StockStream registra la conexión en el hub y la mantiene hasta que el cliente cierra.
// Los mensajes entrantes se descartan.
func StockStream(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		tenantID, _ := conn.Locals(LocalTenantID).(string)
		userID, _ := conn.Locals(LocalUserID).(string)
		client := &ws.Client{TenantID: tenantID, UserID: userID, Conn: conn}

		if !hub.Join(client) {
			return
		}
		defer hub.Leave(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
