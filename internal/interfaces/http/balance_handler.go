package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// BalanceHandler consultas de saldo y disponible (protegido).
type BalanceHandler struct {
	uc *stock.BalanceUseCase
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(uc *stock.BalanceUseCase) *BalanceHandler {
	return &BalanceHandler{uc: uc}
}

// GetBalance godoc
// @Summary      Saldo de un artículo en todas las ubicaciones
// @Tags         stock-balances
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balances/{item_id} [get]
func (h *BalanceHandler) GetBalance(c *fiber.Ctx) error {
	out, err := h.uc.GetBalance(c.Context(), ActorFrom(c), c.Params("item_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBalanceAtLocation godoc
// @Summary      Saldo de un artículo en una ubicación
// @Tags         stock-balances
// @Security     Bearer
// @Produce      json
// @Param        item_id      path  string  true  "ID del artículo"
// @Param        location_id  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/stock/balances/{item_id}/locations/{location_id} [get]
func (h *BalanceHandler) GetBalanceAtLocation(c *fiber.Ctx) error {
	out, err := h.uc.GetBalanceAtLocation(c.Context(), ActorFrom(c), c.Params("item_id"), c.Params("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetAvailable godoc
// @Summary      Disponible (saldo - reservado)
// @Tags         stock-balances
// @Security     Bearer
// @Produce      json
// @Param        item_id      path   string  true   "ID del artículo"
// @Param        location_id  query  string  false  "Vacío = todas las ubicaciones"
// @Success      200  {object}  dto.AvailableResponse
// @Router       /api/stock/available/{item_id} [get]
func (h *BalanceHandler) GetAvailable(c *fiber.Ctx) error {
	out, err := h.uc.GetAvailable(c.Context(), ActorFrom(c), c.Params("item_id"), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSummary godoc
// @Summary      Resumen de saldos por artículo
// @Tags         stock-balances
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Vacío = todas las ubicaciones"
// @Success      200  {object}  dto.BalanceSummaryResponse
// @Router       /api/stock/balances [get]
func (h *BalanceHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetBalanceSummary(c.Context(), ActorFrom(c), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReport godoc
// @Summary      Resumen de saldos en PDF
// @Tags         stock-balances
// @Security     Bearer
// @Produce      application/pdf
// @Param        location_id  query  string  false  "Vacío = todas las ubicaciones"
// @Success      200  {file}  file
// @Router       /api/stock/balances/report.pdf [get]
func (h *BalanceHandler) GetReport(c *fiber.Ctx) error {
	a := ActorFrom(c)
	pdf, err := h.uc.BalanceReport(c.Context(), a, c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="saldos-%s.pdf"`, a.TenantID))
	return c.Send(pdf)
}

// GetReplenishment godoc
// @Summary      Lista de reposición
// @Description  Artículos activos en o bajo su punto de reorden con la cantidad sugerida de pedido, ordenados por prioridad.
// @Tags         stock-balances
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Vacío = todas las ubicaciones"
// @Success      200  {array}   dto.ReplenishmentSuggestion
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/replenishment [get]
func (h *BalanceHandler) GetReplenishment(c *fiber.Ctx) error {
	out, err := h.uc.GetReplenishmentList(c.Context(), ActorFrom(c), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
