package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onu-almacen-api/internal/application/batch"
	"github.com/jhoicas/onu-almacen-api/internal/application/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/domain"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// BatchHandler lotes, entregas parciales e importación de equipos.
type BatchHandler struct {
	batches    *batch.UseCase
	deliveries *delivery.UseCase
	log        *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(batches *batch.UseCase, deliveries *delivery.UseCase, log *logger.Logger) *BatchHandler {
	return &BatchHandler{batches: batches, deliveries: deliveries, log: log}
}

// Create godoc
// @Summary      Crear lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Lote"
// @Success      201  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.batches.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar lotes
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.BatchListResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, h.log, badQuery())
	}
	out, err := h.batches.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener lote con su progreso
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.batches.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar lote
// @Description  Sin force responde 409 REQUIRES_CONFIRMATION con los equipos afectados; con force=true&strategy=purge borra todo.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id        path   int     true   "ID del lote"
// @Param        strategy  query  string  false  "purge"
// @Param        force     query  bool    false  "Confirmación"
// @Success      200  {object}  dto.DeletionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.DeleteRequest
	if err := c.QueryParser(&in); err != nil {
		return respondError(c, h.log, badQuery())
	}
	out, err := h.batches.Delete(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondDeletion(c, out)
}

// AddDelivery godoc
// @Summary      Registrar entrega parcial
// @Description  El número se asigna como máximo+1 dentro del lote. Un número explícito repetido con el mismo contenido es idempotente.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID del lote"
// @Param        body  body  dto.CreateDeliveryRequest  true  "Entrega"
// @Success      201  {object}  dto.DeliveryResponse
// @Success      200  {object}  dto.DeliveryResponse  "reintento idempotente"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/deliveries [post]
func (h *BatchHandler) AddDelivery(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.CreateDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.deliveries.Add(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListDeliveries godoc
// @Summary      Entregas del lote y progreso
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.DeliveryListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/deliveries [get]
func (h *BatchHandler) ListDeliveries(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.deliveries.List(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RemoveDelivery godoc
// @Summary      Borrar entrega parcial
// @Description  Con equipos vinculados exige force=true y strategy=detach|purge; las entregas posteriores se renumeran.
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id        path   int     true   "ID de la entrega"
// @Param        strategy  query  string  false  "detach o purge"
// @Param        force     query  bool    false  "Confirmación"
// @Success      200  {object}  dto.DeletionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [delete]
func (h *BatchHandler) RemoveDelivery(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.DeleteRequest
	if err := c.QueryParser(&in); err != nil {
		return respondError(c, h.log, badQuery())
	}
	out, err := h.deliveries.Remove(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondDeletion(c, out)
}

// Import godoc
// @Summary      Importar equipos (JSON)
// @Description  Crea los equipos válidos en la entrega indicada y reporta las filas rechazadas. dry_run valida sin escribir.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID del lote"
// @Param        body  body  dto.ImportRequest  true  "Filas"
// @Success      200  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/import [post]
func (h *BatchHandler) Import(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, badBody())
	}
	out, err := h.batches.Import(c.UserContext(), id, GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ImportFile godoc
// @Summary      Importar equipos (archivo)
// @Description  Acepta .xlsx o .csv con columnas MAC, serie GPON y serie de fabricante.
// @Tags         batches
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id               path      int     true   "ID del lote"
// @Param        file             formData  file    true   "Planilla"
// @Param        delivery_number  formData  int     true   "Número de entrega"
// @Param        item_code        formData  string  false  "Código de ítem"
// @Param        dry_run          formData  bool    false  "Solo validar"
// @Success      200  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/import/file [post]
func (h *BatchHandler) ImportFile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, h.log, domain.Missing("file"))
	}
	number, err := strconv.Atoi(c.FormValue("delivery_number"))
	if err != nil {
		return respondError(c, h.log, domain.Invalid("delivery_number", "debe ser un entero"))
	}
	dryRun, _ := strconv.ParseBool(c.FormValue("dry_run", "false"))
	in := dto.ImportRequest{
		DeliveryNumber: number,
		ItemCode:       c.FormValue("item_code"),
		DryRun:         dryRun,
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	out, err := h.batches.ImportFile(c.UserContext(), id, GetActor(c), in, fh.Filename, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
