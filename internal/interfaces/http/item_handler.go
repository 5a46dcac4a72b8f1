package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

// ItemHandler maneja el catálogo de artículos de stock (protegido).
type ItemHandler struct {
	uc *stock.CatalogUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *stock.CatalogUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear artículo de stock
// @Tags         stock-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del artículo"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateItem(c.Context(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo por ID
// @Tags         stock-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetItem(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetBySKU godoc
// @Summary      Obtener artículo por SKU
// @Tags         stock-items
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/sku/{sku} [get]
func (h *ItemHandler) GetBySKU(c *fiber.Ctx) error {
	out, err := h.uc.GetItemBySKU(c.Context(), ActorFrom(c), c.Params("sku"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar artículos
// @Tags         stock-items
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "Active | Inactive | Discontinued"
// @Param        category  query  string  false  "Categoría"
// @Param        search    query  string  false  "Texto en SKU o nombre"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {object}  dto.ItemListResponse
// @Router       /api/stock/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	in := dto.ItemFilterRequest{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		PageRequest: dto.PageRequest{
			Limit:  c.QueryInt("limit", dto.DefaultPageLimit),
			Offset: c.QueryInt("offset", 0),
		},
	}
	in.Normalize()
	if ok, err := validateQuery(c, &in); !ok {
		return err
	}
	out, err := h.uc.ListItems(c.Context(), ActorFrom(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar datos del artículo
// @Tags         stock-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del artículo"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateItem(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetLevels godoc
// @Summary      Fijar mínimo, punto y cantidad de reorden
// @Tags         stock-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del artículo"
// @Param        body  body  dto.SetStockLevelsRequest  true  "Niveles"
// @Success      200   {object}  dto.ItemResponse
// @Router       /api/stock/items/{id}/levels [put]
func (h *ItemHandler) SetLevels(c *fiber.Ctx) error {
	var in dto.SetStockLevelsRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.SetStockLevels(c.Context(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Activate godoc
// @Summary      Activar artículo
// @Tags         stock-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/activate [post]
func (h *ItemHandler) Activate(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.ActivateItem)
}

// Deactivate godoc
// @Summary      Desactivar artículo
// @Tags         stock-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Router       /api/stock/items/{id}/deactivate [post]
func (h *ItemHandler) Deactivate(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.DeactivateItem)
}

// Discontinue godoc
// @Summary      Descontinuar artículo (terminal)
// @Tags         stock-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Router       /api/stock/items/{id}/discontinue [post]
func (h *ItemHandler) Discontinue(c *fiber.Ctx) error {
	return h.lifecycle(c, h.uc.DiscontinueItem)
}

type itemTransition func(ctx context.Context, a stock.Actor, id string) (*dto.ItemResponse, error)

func (h *ItemHandler) lifecycle(c *fiber.Ctx, fn itemTransition) error {
	out, err := fn(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
