package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// ReservationHandler reservas de stock para licitaciones (protegido).
type ReservationHandler struct {
	uc *stock.ReservationUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *stock.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar stock
// @Tags         stock-reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveStockRequest  true  "Artículo, ubicación, cantidad y propósito"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/stock/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reserve(c.Context(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener reserva
// @Tags         stock-reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetReservation(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Issue godoc
// @Summary      Entregar (total o parcial) contra la reserva
// @Tags         stock-reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la reserva"
// @Param        body  body  dto.IssueReservationRequest  true  "Cantidad a entregar"
// @Success      200   {object}  dto.IssueReservationResponse
// @Router       /api/stock/reservations/{id}/issue [post]
func (h *ReservationHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueReservationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Issue(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Release godoc
// @Summary      Liberar reserva
// @Tags         stock-reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true   "ID de la reserva"
// @Param        body  body  dto.ReleaseReservationRequest  false  "Motivo opcional"
// @Success      200   {object}  dto.ReservationResponse
// @Router       /api/stock/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	var in dto.ReleaseReservationRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.Release(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Expire godoc
// @Summary      Vencer una reserva cuya fecha ya pasó
// @Tags         stock-reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/stock/reservations/{id}/expire [post]
func (h *ReservationHandler) Expire(c *fiber.Ctx) error {
	out, err := h.uc.Expire(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Active godoc
// @Summary      Reservas activas
// @Tags         stock-reservations
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Artículo"
// @Param        location_id  query  string  false  "Ubicación"
// @Success      200  {object}  dto.ReservationListResponse
// @Router       /api/stock/reservations/active [get]
func (h *ReservationHandler) Active(c *fiber.Ctx) error {
	out, err := h.uc.GetActiveReservations(c.Context(), ActorFrom(c), c.Query("item_id"), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ForTender godoc
// @Summary      Reservas de una licitación
// @Tags         stock-reservations
// @Security     Bearer
// @Produce      json
// @Param        tender_id  path  string  true  "ID de la licitación"
// @Success      200  {object}  dto.ReservationListResponse
// @Router       /api/stock/reservations/tender/{tender_id} [get]
func (h *ReservationHandler) ForTender(c *fiber.Ctx) error {
	out, err := h.uc.GetReservationsForTender(c.Context(), ActorFrom(c), c.Params("tender_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Salidas generadas por las entregas de la reserva
// @Tags         stock-reservations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la reserva"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/reservations/{id}/movements [get]
func (h *ReservationHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.GetReservationMovements(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
