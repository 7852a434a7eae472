package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/inspection"
	"github.com/jhoicas/onu-almacen-api/internal/application/sectorreturn"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// EquipmentHandler registro de equipos, inspecciones de laboratorio y devoluciones de sector.
type EquipmentHandler struct {
	equipment  *equipment.UseCase
	inspection *inspection.UseCase
	sector     *sectorreturn.UseCase
	log        *logger.Logger
}

// NewEquipmentHandler construye el handler.
func NewEquipmentHandler(eq *equipment.UseCase, insp *inspection.UseCase, sector *sectorreturn.UseCase, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{equipment: eq, inspection: insp, sector: sector, log: log}
}

// List godoc
// @Summary      Listar equipos
// @Tags         equipment
// @Security     Bearer
// @Produce      json
// @Param        state         query  string  false  "Estado"
// @Param        model_id      query  int     false  "Modelo"
// @Param        batch_id      query  int     false  "Lote"
// @Param        warehouse_id  query  int     false  "Bodega"
// @Param        delivery_id   query  int     false  "Entrega"
// @Param        q             query  string  false  "Código, MAC o serie"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.EquipmentListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/equipment [get]
func (h *EquipmentHandler) List(c *fiber.Ctx) error {
	var in dto.EquipmentFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return respondError(c, h.log, badQuery())
	}
	out, err := h.equipment.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de equipo
// @Description  Incluye modelo, lote, bodega, número de entrega, historial, inspecciones y estados permitidos.
// @Tags         equipment
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del equipo"
// @Success      200  {object}  dto.EquipmentDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/equipment/{id} [get]
func (h *EquipmentHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.equipment.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ChangeState godoc
// @Summary      Cambiar estado de un equipo
// @Tags         equipment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true  "ID del equipo"
// @Param        body  body  dto.ChangeStateRequest  true  "Estado destino"
// @Success      200  {object}  dto.EquipmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/equipment/{id}/state [post]
func (h *EquipmentHandler) ChangeState(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.ChangeStateRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.equipment.ChangeState(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de estados
// @Tags         equipment
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del equipo"
// @Success      200  {array}   dto.StateChangeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/equipment/{id}/history [get]
func (h *EquipmentHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.equipment.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RegisterInspection godoc
// @Summary      Registrar inspección de laboratorio
// @Description  Las cinco pruebas son obligatorias. Aprobado pasa al estado configurado; rechazado a DEFECTIVE.
// @Tags         inspections
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInspectionRequest  true  "Resultados"
// @Success      201  {object}  dto.InspectionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inspections [post]
func (h *EquipmentHandler) RegisterInspection(c *fiber.Ctx) error {
	var in dto.CreateInspectionRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.inspection.Register(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Inspections godoc
// @Summary      Inspecciones de un equipo
// @Tags         inspections
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del equipo"
// @Success      200  {array}   dto.InspectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/equipment/{id}/inspections [get]
func (h *EquipmentHandler) Inspections(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.inspection.ListByEquipment(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RegisterSectorReturn godoc
// @Summary      Registrar devolución desde el sector
// @Description  Equipos RESERVED, ASSIGNED o INSTALLED vuelven a EN_LAB.
// @Tags         sector-returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SectorReturnRequest  true  "Devolución"
// @Success      201  {object}  dto.SectorReturnResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sector-returns [post]
func (h *EquipmentHandler) RegisterSectorReturn(c *fiber.Ctx) error {
	var in dto.SectorReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.sector.Register(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// SectorReturns godoc
// @Summary      Devoluciones de sector de un equipo
// @Tags         sector-returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del equipo"
// @Success      200  {array}   dto.SectorReturnResponse
// @Router       /api/equipment/{id}/sector-returns [get]
func (h *EquipmentHandler) SectorReturns(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.sector.ListByEquipment(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
