package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/returns"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// ReturnHandler flujo de devoluciones a proveedor.
type ReturnHandler struct {
	uc  *returns.UseCase
	log *logger.Logger
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.UseCase, log *logger.Logger) *ReturnHandler {
	return &ReturnHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear devolución a proveedor
// @Description  Todos los equipos deben estar DEFECTIVE y pertenecer al lote. Reenviar el mismo return_number devuelve la devolución existente.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "Devolución"
// @Success      201  {object}  dto.ReturnResponse
// @Success      200  {object}  dto.ReturnResponse  "reintento idempotente"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener devolución
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la devolución"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar devoluciones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        state     query  string  false  "PENDING, SENT o CONFIRMED"
// @Param        batch_id  query  int     false  "Lote"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ReturnListResponse
// @Router       /api/returns [get]
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	var in dto.ReturnFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return respondError(c, h.log, badQuery())
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Send godoc
// @Summary      Enviar devolución al proveedor
// @Description  PENDING -> SENT; los equipos pasan a RETURNED_TO_VENDOR.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true   "ID de la devolución"
// @Param        body  body  dto.SendReturnRequest  false  "Notas del envío"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/send [post]
func (h *ReturnHandler) Send(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.SendReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return respondError(c, h.log, badBody())
		}
	}
	out, err := h.uc.Send(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar respuesta del proveedor
// @Description  SENT -> CONFIRMED con REPLACEMENT, CREDIT o REJECTED.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID de la devolución"
// @Param        body  body  dto.ConfirmReturnRequest  true  "Respuesta"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/confirm [post]
func (h *ReturnHandler) Confirm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.ConfirmReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.uc.Confirm(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RegisterReplacement godoc
// @Summary      Registrar equipo de reemplazo
// @Description  Solo con respuesta REPLACEMENT. Retira los identificadores del original y da de alta el reemplazo.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                             true  "ID de la devolución"
// @Param        body  body  dto.RegisterReplacementRequest  true  "Identificadores del reemplazo"
// @Success      201  {object}  dto.ReplacementResponse
// @Success      200  {object}  dto.ReplacementResponse  "reintento idempotente"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/replacements [post]
func (h *ReturnHandler) RegisterReplacement(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.RegisterReplacementRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.uc.RegisterReplacement(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
