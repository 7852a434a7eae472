package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/onu-almacen-api/internal/application/batch"
	"github.com/jhoicas/onu-almacen-api/internal/application/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/inspection"
	"github.com/jhoicas/onu-almacen-api/internal/application/returns"
	"github.com/jhoicas/onu-almacen-api/internal/application/sectorreturn"
	"github.com/jhoicas/onu-almacen-api/internal/application/usecase"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EquipmentUC    *equipment.UseCase
	InspectionUC   *inspection.UseCase
	SectorReturnUC *sectorreturn.UseCase
	ReturnUC       *returns.UseCase
	BatchUC        *batch.UseCase
	DeliveryUC     *delivery.UseCase
	WarehouseUC    *usecase.WarehouseUseCase
	ModelUC        *usecase.ModelUseCase
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Todas las rutas de /api requieren Bearer Token; admin pasa cualquier RequireRole.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	warehouseStaff := RequireRole(RoleBodeguero)
	labStaff := RequireRole(RoleTecnico)
	stateStaff := RequireRole(RoleBodeguero, RoleTecnico)
	adminOnly := RequireRole(RoleAdmin)

	// Equipos
	eq := NewEquipmentHandler(deps.EquipmentUC, deps.InspectionUC, deps.SectorReturnUC, deps.Log)
	equipmentGroup := api.Group("/equipment")
	equipmentGroup.Get("/", eq.List)
	equipmentGroup.Get("/:id", eq.Get)
	equipmentGroup.Post("/:id/state", stateStaff, eq.ChangeState)
	equipmentGroup.Get("/:id/history", eq.History)
	equipmentGroup.Get("/:id/inspections", eq.Inspections)
	equipmentGroup.Get("/:id/sector-returns", eq.SectorReturns)

	// Laboratorio y devoluciones de sector
	api.Post("/inspections", labStaff, eq.RegisterInspection)
	api.Post("/sector-returns", labStaff, eq.RegisterSectorReturn)

	// Devoluciones a proveedor
	rh := NewReturnHandler(deps.ReturnUC, deps.Log)
	returnsGroup := api.Group("/returns")
	returnsGroup.Post("/", warehouseStaff, rh.Create)
	returnsGroup.Get("/", rh.List)
	returnsGroup.Get("/:id", rh.Get)
	returnsGroup.Post("/:id/send", warehouseStaff, rh.Send)
	returnsGroup.Post("/:id/confirm", warehouseStaff, rh.Confirm)
	returnsGroup.Post("/:id/replacements", warehouseStaff, rh.RegisterReplacement)

	// Lotes, entregas e importación
	bh := NewBatchHandler(deps.BatchUC, deps.DeliveryUC, deps.Log)
	batches := api.Group("/batches")
	batches.Post("/", warehouseStaff, bh.Create)
	batches.Get("/", bh.List)
	batches.Get("/:id", bh.Get)
	batches.Delete("/:id", warehouseStaff, bh.Delete)
	batches.Post("/:id/deliveries", warehouseStaff, bh.AddDelivery)
	batches.Get("/:id/deliveries", bh.ListDeliveries)
	batches.Post("/:id/import", warehouseStaff, bh.Import)
	batches.Post("/:id/import/file", warehouseStaff, bh.ImportFile)
	api.Delete("/deliveries/:id", warehouseStaff, bh.RemoveDelivery)

	// Catálogo: bodegas y modelos
	wh := NewWarehouseHandler(deps.WarehouseUC, deps.ModelUC, deps.Log)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", adminOnly, wh.Create)
	warehouses.Get("/", wh.List)
	warehouses.Get("/:id", wh.GetByID)
	warehouses.Put("/:id", adminOnly, wh.Update)
	models := api.Group("/models")
	models.Post("/", adminOnly, wh.CreateModel)
	models.Get("/", wh.ListModels)
	models.Get("/:id", wh.GetModel)
}
