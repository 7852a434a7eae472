package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/usecase"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// WarehouseHandler maneja las peticiones HTTP de bodegas y modelos de equipo.
type WarehouseHandler struct {
	uc     *usecase.WarehouseUseCase
	models *usecase.ModelUseCase
	log    *logger.Logger
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase, models *usecase.ModelUseCase, log *logger.Logger) *WarehouseHandler {
	return &WarehouseHandler{uc: uc, models: models, log: log}
}

// pageFromQuery lee limit/offset; valores inválidos caen en los defaults.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page
}

// Create godoc
// @Summary      Crear bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "Datos de la bodega"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "ID de la bodega"
// @Param        body  body  dto.UpdateWarehouseRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [put]
func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.UpdateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateModel godoc
// @Summary      Registrar modelo de equipo
// @Tags         models
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateModelRequest  true  "Modelo"
// @Success      201  {object}  dto.ModelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/models [post]
func (h *WarehouseHandler) CreateModel(c *fiber.Ctx) error {
	var in dto.CreateModelRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.models.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetModel godoc
// @Summary      Obtener modelo de equipo
// @Tags         models
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del modelo"
// @Success      200  {object}  dto.ModelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/models/{id} [get]
func (h *WarehouseHandler) GetModel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.models.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListModels godoc
// @Summary      Listar modelos de equipo
// @Tags         models
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ModelListResponse
// @Router       /api/models [get]
func (h *WarehouseHandler) ListModels(c *fiber.Ctx) error {
	out, err := h.models.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
