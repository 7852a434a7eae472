package equipment

import (
	"time"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
	"github.com/jhoicas/onu-almacen-api/internal/domain/entity"
)

// ToResponse convierte un equipo en su DTO.
func ToResponse(e *entity.Equipment) *dto.EquipmentResponse {
	if e == nil {
		return nil
	}
	return &dto.EquipmentResponse{
		ID:                 e.ID,
		Code:               e.Code,
		ItemCode:           e.ItemCode,
		MAC:                e.MAC,
		GPONSerial:         e.GPONSerial,
		ManufacturerSerial: e.ManufacturerSerial,
		State:              string(e.State),
		BatchID:            e.BatchID,
		DeliveryID:         e.DeliveryID,
		ModelID:            e.ModelID,
		WarehouseID:        e.WarehouseID,
		ReplacesID:         e.ReplacesID,
		Version:            e.Version,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// ToHistoryResponse convierte el historial.
func ToHistoryResponse(list []*entity.StateChange) []dto.StateChangeResponse {
	out := make([]dto.StateChangeResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.StateChangeResponse{
			ID:        c.ID,
			From:      string(c.From),
			To:        string(c.To),
			Trigger:   string(c.Trigger),
			Actor:     c.Actor,
			Reason:    c.Reason,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

// ToInspectionResponse convierte un registro de inspección; resulting es el estado aplicado (opcional).
func ToInspectionResponse(r *entity.InspectionRecord, resulting entity.EquipmentState) dto.InspectionResponse {
	faults := r.Faults
	if faults == nil {
		faults = []string{}
	}
	return dto.InspectionResponse{
		ID:                 r.ID,
		EquipmentID:        r.EquipmentID,
		LogicalSerialMatch: r.Results.LogicalSerialMatch,
		WiFi24GHz:          r.Results.WiFi24GHz,
		WiFi5GHz:           r.Results.WiFi5GHz,
		EthernetPort:       r.Results.EthernetPort,
		LANPort:            r.Results.LANPort,
		Approved:           r.Approved,
		Faults:             faults,
		Notes:              r.Notes,
		Technician:         r.Technician,
		DurationSeconds:    int(r.Duration / time.Second),
		ResultingState:     string(resulting),
		CreatedAt:          r.CreatedAt,
	}
}

// ToSectorReturnsResponse convierte devoluciones de sector.
func ToSectorReturnsResponse(list []*entity.SectorReturn) []dto.SectorReturnResponse {
	out := make([]dto.SectorReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, ToSectorReturnResponse(r))
	}
	return out
}

// ToSectorReturnResponse convierte una devolución de sector.
func ToSectorReturnResponse(r *entity.SectorReturn) dto.SectorReturnResponse {
	return dto.SectorReturnResponse{
		ID:          r.ID,
		EquipmentID: r.EquipmentID,
		Sector:      r.Sector,
		Reason:      r.Reason,
		FromState:   string(r.FromState),
		ReceivedBy:  r.ReceivedBy,
		CreatedAt:   r.CreatedAt,
	}
}
