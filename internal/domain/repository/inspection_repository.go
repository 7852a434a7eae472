package repository

import (
	"context"

	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// InspectionRepository registros de laboratorio (inmutables).
type InspectionRepository interface {
	Create(ctx context.Context, r *entity.InspectionRecord) error
	ListByEquipment(ctx context.Context, equipmentID int64) ([]*entity.InspectionRecord, error)
}

// SectorReturnRepository devoluciones de equipos desde el sector solicitante.
type SectorReturnRepository interface {
	Create(ctx context.Context, r *entity.SectorReturn) error
	ListByEquipment(ctx context.Context, equipmentID int64) ([]*entity.SectorReturn, error)
}
