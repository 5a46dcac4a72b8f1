package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// LocationHandler maneja las ubicaciones de stock (protegido).
type LocationHandler struct {
	uc *stock.CatalogUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc *stock.CatalogUseCase) *LocationHandler {
	return &LocationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         stock-locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "Datos de la ubicación"
// @Success      201   {object}  dto.LocationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateLocation(c.Context(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         stock-locations
// @Security     Bearer
// @Produce      json
// @Param        active_only  query  bool  false  "Solo activas"
// @Success      200  {object}  dto.LocationListResponse
// @Router       /api/stock/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListLocations(c.Context(), ActorFrom(c), c.QueryBool("active_only", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ubicación por ID
// @Tags         stock-locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetLocation(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ubicación
// @Tags         stock-locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la ubicación"
// @Param        body  body  dto.UpdateLocationRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.LocationResponse
// @Router       /api/stock/locations/{id} [put]
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLocationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateLocation(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Activate godoc
// @Summary      Activar ubicación
// @Tags         stock-locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Router       /api/stock/locations/{id}/activate [post]
func (h *LocationHandler) Activate(c *fiber.Ctx) error {
	out, err := h.uc.ActivateLocation(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar ubicación
// @Tags         stock-locations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Router       /api/stock/locations/{id}/deactivate [post]
func (h *LocationHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.DeactivateLocation(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
