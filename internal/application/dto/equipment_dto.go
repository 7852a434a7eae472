package dto

import "time"

// EquipmentFilterRequest filtros de listado (query string).
type EquipmentFilterRequest struct {
	State       string `query:"state"`
	ModelID     int64  `query:"model_id"`
	BatchID     int64  `query:"batch_id"`
	WarehouseID int64  `query:"warehouse_id"`
	DeliveryID  int64  `query:"delivery_id"`
	Search      string `query:"q"`
	PageRequest
}

// EquipmentResponse salida de un equipo.
type EquipmentResponse struct {
	ID                 int64     `json:"id"`
	Code               string    `json:"code"`
	ItemCode           string    `json:"item_code"`
	MAC                string    `json:"mac"`
	GPONSerial         string    `json:"gpon_serial"`
	ManufacturerSerial string    `json:"manufacturer_serial,omitempty"`
	State              string    `json:"state"`
	BatchID            int64     `json:"batch_id"`
	DeliveryID         *int64    `json:"delivery_id,omitempty"`
	ModelID            int64     `json:"model_id"`
	WarehouseID        int64     `json:"warehouse_id"`
	ReplacesID         *int64    `json:"replaces_id,omitempty"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EquipmentListResponse lista paginada de equipos.
type EquipmentListResponse struct {
	Items []EquipmentResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// EquipmentDetailResponse detalle con referencias resueltas e historial.
type EquipmentDetailResponse struct {
	EquipmentResponse
	Model          *ModelResponse         `json:"model,omitempty"`
	Warehouse      *WarehouseResponse     `json:"warehouse,omitempty"`
	BatchCode      string                 `json:"batch_code,omitempty"`
	Vendor         string                 `json:"vendor,omitempty"`
	DeliveryNumber *int                   `json:"delivery_number,omitempty"`
	AllowedStates  []string               `json:"allowed_states"`
	History        []StateChangeResponse  `json:"history"`
	Inspections    []InspectionResponse   `json:"inspections"`
	SectorReturns  []SectorReturnResponse `json:"sector_returns"`
}

// ChangeStateRequest transición manual de estado.
type ChangeStateRequest struct {
	State           string `json:"state" validate:"required"`
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// StateChangeResponse entrada del historial.
type StateChangeResponse struct {
	ID        int64     `json:"id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Trigger   string    `json:"trigger"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SectorReturnRequest devolución de un equipo desde el sector solicitante.
type SectorReturnRequest struct {
	EquipmentID int64  `json:"equipment_id" validate:"required"`
	Sector      string `json:"sector" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
}

// SectorReturnResponse salida de una devolución de sector.
type SectorReturnResponse struct {
	ID          int64     `json:"id"`
	EquipmentID int64     `json:"equipment_id"`
	Sector      string    `json:"sector"`
	Reason      string    `json:"reason"`
	FromState   string    `json:"from_state"`
	ReceivedBy  string    `json:"received_by"`
	CreatedAt   time.Time `json:"created_at"`
}
