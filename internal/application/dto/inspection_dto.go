package dto

import "time"

// CreateInspectionRequest resultados de una pasada de laboratorio. Las cinco pruebas son obligatorias.
type CreateInspectionRequest struct {
	EquipmentID        int64  `json:"equipment_id" validate:"required"`
	LogicalSerialMatch *bool  `json:"logical_serial_match" validate:"required"`
	WiFi24GHz          *bool  `json:"wifi_2_4ghz" validate:"required"`
	WiFi5GHz           *bool  `json:"wifi_5ghz" validate:"required"`
	EthernetPort       *bool  `json:"ethernet_port" validate:"required"`
	LANPort            *bool  `json:"lan_port" validate:"required"`
	Notes              string `json:"notes"`
	DurationSeconds    int    `json:"duration_seconds"`
}

// InspectionResponse salida de un registro de inspección.
type InspectionResponse struct {
	ID                 int64     `json:"id"`
	EquipmentID        int64     `json:"equipment_id"`
	LogicalSerialMatch bool      `json:"logical_serial_match"`
	WiFi24GHz          bool      `json:"wifi_2_4ghz"`
	WiFi5GHz           bool      `json:"wifi_5ghz"`
	EthernetPort       bool      `json:"ethernet_port"`
	LANPort            bool      `json:"lan_port"`
	Approved           bool      `json:"approved"`
	Faults             []string  `json:"faults"`
	Notes              string    `json:"notes,omitempty"`
	Technician         string    `json:"technician"`
	DurationSeconds    int       `json:"duration_seconds"`
	ResultingState     string    `json:"resulting_state,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
