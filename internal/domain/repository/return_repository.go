package repository

import (
	"context"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para VendorReturn y sus ítems.
type ReturnRepository interface {
	// Create inserta la devolución con sus ítems. Número repetido -> *domain.DuplicateIdentifierError.
	Create(ctx context.Context, r *entity.VendorReturn) error
	GetByID(ctx context.Context, id int64) (*entity.VendorReturn, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.VendorReturn, error)
	GetByNumber(ctx context.Context, number string) (*entity.VendorReturn, error)
	List(ctx context.Context, f entity.ReturnFilter) ([]*entity.VendorReturn, int, error)
	// Update persiste estado, respuesta y fechas si r.Version coincide.
	Update(ctx context.Context, r *entity.VendorReturn) error
	UpdateItem(ctx context.Context, returnID int64, item entity.ReturnItem) error
	// FindByEquipment devoluciones que incluyen alguno de los equipos.
	FindByEquipment(ctx context.Context, equipmentIDs []int64) ([]*entity.VendorReturn, error)
	CountByBatch(ctx context.Context, batchID int64) (int, error)
	// NextSequence siguiente consecutivo para números con el prefijo dado (ej. DEV-2024-).
	NextSequence(ctx context.Context, prefix string) (int, error)
}
