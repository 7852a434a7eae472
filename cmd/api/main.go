// @title          ONU Almacén API
// @version        1.0
// @description    Registro de equipos ONU, laboratorio, devoluciones a proveedor y entregas parciales.
// @BasePath       /
// @securityDefinitions.apikey Bearer
// @in             header
// @name           Authorization
// @description    Bearer <token>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/onu-almacen-api/docs"
	"github.com/jhoicas/onu-almacen-api/internal/application/batch"
	"github.com/jhoicas/onu-almacen-api/internal/application/delivery"
	"github.com/jhoicas/onu-almacen-api/internal/application/equipment"
	"github.com/jhoicas/onu-almacen-api/internal/application/inspection"
	"github.com/jhoicas/onu-almacen-api/internal/application/ports"
	"github.com/jhoicas/onu-almacen-api/internal/application/returns"
	"github.com/jhoicas/onu-almacen-api/internal/application/sectorreturn"
	"github.com/jhoicas/onu-almacen-api/internal/application/usecase"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/onu-almacen-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/onu-almacen-api/internal/interfaces/http"
	"github.com/jhoicas/onu-almacen-api/pkg/config"
	"github.com/jhoicas/onu-almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	txRunner, closeStore, err := openStore(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("abrir almacenamiento")
	}
	defer closeStore()

	wh := cfg.Warehouse
	equipmentUC := equipment.NewUseCase(txRunner, log)
	inspectionUC := inspection.NewUseCase(txRunner, log, inspection.Options{
		ApprovedState: entity.EquipmentState(wh.InspectionApprovedState),
	})
	sectorReturnUC := sectorreturn.NewUseCase(txRunner, log)
	returnUC := returns.NewUseCase(txRunner, log, returns.Options{
		ReplacementRequiresInspection: wh.ReplacementRequiresInspection,
	})
	deliveryUC := delivery.NewUseCase(txRunner, log, delivery.Options{SampleSize: wh.DeletionSampleSize})
	batchUC := batch.NewUseCase(txRunner, spreadsheet.NewReader(wh.ImportMaxRows), log, batch.Options{
		SampleSize:    wh.DeletionSampleSize,
		MaxImportRows: wh.ImportMaxRows,
	})
	warehouseUC := usecase.NewWarehouseUseCase(txRunner)
	modelUC := usecase.NewModelUseCase(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	swaggerFile, err := swaggerPath(cfg.HTTP.SwaggerFile)
	if err != nil {
		log.Warn().Err(err).Msg("swagger deshabilitado")
	} else {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "ONU Almacén API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		EquipmentUC:    equipmentUC,
		InspectionUC:   inspectionUC,
		SectorReturnUC: sectorReturnUC,
		ReturnUC:       returnUC,
		BatchUC:        batchUC,
		DeliveryUC:     deliveryUC,
		WarehouseUC:    warehouseUC,
		ModelUC:        modelUC,
		JWTSecret:      cfg.JWT.Secret,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore abre el almacenamiento configurado y devuelve su TxRunner y la función de cierre.
func openStore(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (ports.TxRunner, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			log.Info().Msg("esquema PostgreSQL al día")
		}
		return postgres.NewTxRunner(pool), pool.Close, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar SQLite")
			}
		}, nil
	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("driver de base de datos no soportado: %q", cfg.Driver)
	}
}

// swaggerPath usa el archivo configurado si existe; si no, vuelca el documento embebido a un temporal.
func swaggerPath(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}
	path := filepath.Join(os.TempDir(), "onu-almacen-swagger.json")
	if err := os.WriteFile(path, []byte(docs.SwaggerInfo.ReadDoc()), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
