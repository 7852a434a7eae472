package repository

import (
	"context"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
}

// ModelRepository catálogo de modelos de equipo.
type ModelRepository interface {
	Create(ctx context.Context, m *entity.EquipmentModel) error
	GetByID(ctx context.Context, id int64) (*entity.EquipmentModel, error)
	GetByItemCode(ctx context.Context, itemCode string) (*entity.EquipmentModel, error)
	List(ctx context.Context, limit, offset int) ([]*entity.EquipmentModel, error)
}
