package dto

import "time"

// CreateReturnRequest entrada para crear una devolución a proveedor.
// ReturnNumber es opcional; si se envía, el reintento con el mismo número es idempotente.
type CreateReturnRequest struct {
	BatchID         int64   `json:"batch_id" validate:"required"`
	Reason          string  `json:"reason" validate:"required"`
	LabReportNumber string  `json:"lab_report_number" validate:"required"`
	EquipmentIDs    []int64 `json:"equipment_ids" validate:"required,min=1"`
	ReturnNumber    string  `json:"return_number"`
}

// SendReturnRequest datos del envío al proveedor.
type SendReturnRequest struct {
	Notes string `json:"notes"`
}

// ConfirmReturnRequest respuesta del proveedor.
type ConfirmReturnRequest struct {
	ResponseCode string `json:"response_code" validate:"required"`
	Notes        string `json:"notes"`
}

// RegisterReplacementRequest identificadores del equipo de reemplazo.
type RegisterReplacementRequest struct {
	OriginalEquipmentID int64  `json:"original_equipment_id" validate:"required"`
	MAC                 string `json:"mac" validate:"required"`
	GPONSerial          string `json:"gpon_serial" validate:"required"`
	ManufacturerSerial  string `json:"manufacturer_serial"`
}

// ReturnFilterRequest filtros de listado de devoluciones.
type ReturnFilterRequest struct {
	State   string `query:"state"`
	BatchID int64  `query:"batch_id"`
	PageRequest
}

// CapabilitiesResponse acciones disponibles sobre la devolución.
type CapabilitiesResponse struct {
	CanSend                bool `json:"can_send"`
	CanConfirm             bool `json:"can_confirm"`
	CanRegisterReplacement bool `json:"can_register_replacement"`
}

// ReturnItemResponse equipo de la devolución.
type ReturnItemResponse struct {
	EquipmentID   int64      `json:"equipment_id"`
	Code          string     `json:"code,omitempty"`
	MAC           string     `json:"mac,omitempty"`
	State         string     `json:"state,omitempty"`
	ReplacementID *int64     `json:"replacement_id,omitempty"`
	ReplacedAt    *time.Time `json:"replaced_at,omitempty"`
}

// ReturnResponse salida de una devolución con capacidades derivadas.
type ReturnResponse struct {
	ID              int64                `json:"id"`
	Number          string               `json:"number"`
	BatchID         int64                `json:"batch_id"`
	Vendor          string               `json:"vendor"`
	Reason          string               `json:"reason"`
	LabReportNumber string               `json:"lab_report_number"`
	State           string               `json:"state"`
	ResponseCode    string               `json:"response_code,omitempty"`
	SentAt          *time.Time           `json:"sent_at,omitempty"`
	SentNotes       string               `json:"sent_notes,omitempty"`
	ConfirmedAt     *time.Time           `json:"confirmed_at,omitempty"`
	ResponseNotes   string               `json:"response_notes,omitempty"`
	CreatedBy       string               `json:"created_by"`
	Items           []ReturnItemResponse `json:"items"`
	Capabilities    CapabilitiesResponse `json:"capabilities"`
	Completed       bool                 `json:"completed"`
	Replayed        bool                 `json:"replayed,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ReturnListResponse lista paginada de devoluciones.
type ReturnListResponse struct {
	Items []ReturnResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// ReplacementResponse resultado de registrar un reemplazo.
type ReplacementResponse struct {
	Return      ReturnResponse    `json:"return"`
	Replacement EquipmentResponse `json:"replacement"`
	Replayed    bool              `json:"replayed,omitempty"`
}
