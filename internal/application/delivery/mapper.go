package delivery

import (
	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/domain/deletion"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// ToDeliveryResponse convierte una entrega.
func ToDeliveryResponse(d *entity.PartialDelivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:             d.ID,
		BatchID:        d.BatchID,
		Number:         d.Number,
		DeliveryDate:   d.DeliveryDate,
		Quantity:       d.DeclaredQuantity,
		State:          string(d.State),
		Notes:          d.Notes,
		CreatedBy:      d.CreatedBy,
		EquipmentCount: d.EquipmentCount,
		CreatedAt:      d.CreatedAt,
	}
}

// ToProgressResponse convierte el progreso de un lote.
func ToProgressResponse(p entity.BatchProgress) dto.ProgressResponse {
	return dto.ProgressResponse{
		Expected:   p.Expected,
		Received:   p.Received,
		Pending:    p.Pending,
		Percent:    p.Percent,
		Unassigned: p.Unassigned,
	}
}

// ToDependents muestra de equipos dependientes.
func ToDependents(items []*entity.Equipment) []deletion.Dependent {
	out := make([]deletion.Dependent, 0, len(items))
	for _, e := range items {
		out = append(out, deletion.Dependent{ID: e.ID, Code: e.Code, MAC: e.MAC})
	}
	return out
}

// ToDeletionResponse convierte el resultado de un borrado en dos fases.
func ToDeletionResponse(o deletion.Outcome) *dto.DeletionResponse {
	out := &dto.DeletionResponse{
		Deleted:  o.Deleted,
		Strategy: string(o.Strategy),
		Affected: o.Affected,
	}
	if c := o.Confirmation; c != nil {
		out.RequiresConfirmation = true
		out.DependentCount = c.DependentCount
		for _, d := range c.Sample {
			out.Sample = append(out.Sample, dto.DependentResponse{ID: d.ID, Code: d.Code, MAC: d.MAC})
		}
		for _, s := range c.Strategies {
			out.Strategies = append(out.Strategies, string(s))
		}
	}
	return out
}
