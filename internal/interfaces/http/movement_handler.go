package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// MovementHandler registro y flujo de aprobación de movimientos (protegido).
type MovementHandler struct {
	uc *stock.LedgerUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *stock.LedgerUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// CreateIn godoc
// @Summary      Registrar entrada
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInMovementRequest  true  "Entrada a una ubicación"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/movements/in [post]
func (h *MovementHandler) CreateIn(c *fiber.Ctx) error {
	var in dto.CreateInMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	return h.created(c)(h.uc.CreateIn(c.Context(), ActorFrom(c), in))
}

// CreateOut godoc
// @Summary      Registrar salida
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOutMovementRequest  true  "Salida de una ubicación"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/stock/movements/out [post]
func (h *MovementHandler) CreateOut(c *fiber.Ctx) error {
	var in dto.CreateOutMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	return h.created(c)(h.uc.CreateOut(c.Context(), ActorFrom(c), in))
}

// CreateTransfer godoc
// @Summary      Registrar traslado entre ubicaciones
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferMovementRequest  true  "Origen y destino distintos"
// @Success      201   {object}  dto.MovementResponse
// @Router       /api/stock/movements/transfer [post]
func (h *MovementHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	return h.created(c)(h.uc.CreateTransfer(c.Context(), ActorFrom(c), in))
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste (siempre pendiente de aprobación)
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "is_positive indica suma o resta"
// @Success      201   {object}  dto.MovementResponse
// @Router       /api/stock/movements/adjustment [post]
func (h *MovementHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	return h.created(c)(h.uc.CreateAdjustment(c.Context(), ActorFrom(c), in))
}

func (h *MovementHandler) created(c *fiber.Ctx) func(*dto.MovementResponse, error) error {
	return func(out *dto.MovementResponse, err error) error {
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// Approve godoc
// @Summary      Aprobar movimiento pendiente
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE | INSUFFICIENT_STOCK"
// @Router       /api/stock/movements/{id}/approve [post]
func (h *MovementHandler) Approve(c *fiber.Ctx) error {
	out, err := h.uc.Approve(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar movimiento pendiente
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.RejectMovementRequest  true  "Motivo"
// @Success      200   {object}  dto.MovementResponse
// @Router       /api/stock/movements/{id}/reject [post]
func (h *MovementHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reject(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar movimiento pendiente
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID del movimiento"
// @Param        body  body  dto.CancelMovementRequest  false  "Motivo opcional"
// @Success      200   {object}  dto.MovementResponse
// @Router       /api/stock/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelMovementRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.Cancel(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetMovement(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de movimientos (más recientes primero)
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Artículo"
// @Param        location_id  query  string  false  "Ubicación (origen o destino)"
// @Param        type         query  string  false  "In | Out | Transfer | Adjustment"
// @Param        status       query  string  false  "Pending | Approved | Rejected | Cancelled"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Param        limit        query  int     false  "Máximo de filas"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	in := dto.MovementHistoryRequest{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Type:       c.Query("type"),
		Status:     c.Query("status"),
		Limit:      c.QueryInt("limit", 0),
	}
	var err error
	if in.From, err = queryTime(c, "from"); err != nil {
		return invalidQuery(c, "from debe ser RFC3339")
	}
	if in.To, err = queryTime(c, "to"); err != nil {
		return invalidQuery(c, "to debe ser RFC3339")
	}
	if ok, err := validateQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.GetMovementHistory(c.Context(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// queryTime lee un parámetro RFC3339 opcional.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
