package repository

import (
	"context"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// EquipmentRepository define el puerto de persistencia para Equipment (DIP).
// Las lecturas devuelven nil, nil cuando el equipo no existe.
type EquipmentRepository interface {
	// Create asigna ID y Version=1. Viola unicidad de MAC/GPON/serie/código -> *domain.DuplicateIdentifierError.
	Create(ctx context.Context, e *entity.Equipment) error
	GetByID(ctx context.Context, id int64) (*entity.Equipment, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Equipment, error)
	// GetManyForUpdate bloquea varias filas en orden de ID. Omite los IDs inexistentes.
	GetManyForUpdate(ctx context.Context, ids []int64) ([]*entity.Equipment, error)
	// Update persiste estado/entrega/bodega si e.Version coincide; incrementa e.Version.
	Update(ctx context.Context, e *entity.Equipment) error
	FindByIdentifier(ctx context.Context, field entity.IdentifierField, value string) (*entity.Equipment, error)
	List(ctx context.Context, f entity.EquipmentFilter) ([]*entity.Equipment, int, error)

	CountByDelivery(ctx context.Context, deliveryID int64) (int, error)
	// ListByDelivery hasta limit equipos de la entrega (limit <= 0: todos), en orden de ID.
	ListByDelivery(ctx context.Context, deliveryID int64, limit int) ([]*entity.Equipment, error)
	// DetachDelivery deja sin entrega a los equipos vinculados; devuelve cuántos.
	DetachDelivery(ctx context.Context, deliveryID int64) (int, error)
	CountByBatch(ctx context.Context, batchID int64) (int, error)
	ListByBatch(ctx context.Context, batchID int64, limit int) ([]*entity.Equipment, error)
	// CountUnassigned equipos del lote sin entrega.
	CountUnassigned(ctx context.Context, batchID int64) (int, error)
	// Delete borra equipos junto con su historial, inspecciones y devoluciones de sector.
	// El registro de identificadores retirados no se toca.
	Delete(ctx context.Context, ids []int64) error
}

// HistoryRepository historial de cambios de estado (solo inserción).
type HistoryRepository interface {
	Append(ctx context.Context, c *entity.StateChange) error
	ListByEquipment(ctx context.Context, equipmentID int64) ([]*entity.StateChange, error)
}

// RetiredIdentifierRepository registro permanente de identificadores retirados.
type RetiredIdentifierRepository interface {
	Retire(ctx context.Context, ids []entity.RetiredIdentifier) error
	Get(ctx context.Context, field entity.IdentifierField, value string) (*entity.RetiredIdentifier, error)
}
