package repository

import (
	"context"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para Batch.
type BatchRepository interface {
	Create(ctx context.Context, b *entity.Batch) error
	GetByID(ctx context.Context, id int64) (*entity.Batch, error)
	// GetForUpdate serializa la numeración de entregas del lote.
	GetForUpdate(ctx context.Context, id int64) (*entity.Batch, error)
	GetByCode(ctx context.Context, code string) (*entity.Batch, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Batch, int, error)
	Delete(ctx context.Context, id int64) error
}

// DeliveryRepository define el puerto de persistencia para PartialDelivery.
// Las lecturas completan EquipmentCount.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.PartialDelivery) error
	GetByID(ctx context.Context, id int64) (*entity.PartialDelivery, error)
	GetByNumber(ctx context.Context, batchID int64, number int) (*entity.PartialDelivery, error)
	// ListByBatch entregas del lote ordenadas por número.
	ListByBatch(ctx context.Context, batchID int64) ([]*entity.PartialDelivery, error)
	UpdateNumber(ctx context.Context, id int64, number int) error
	Delete(ctx context.Context, id int64) error
	DeleteByBatch(ctx context.Context, batchID int64) (int, error)
}
