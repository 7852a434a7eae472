package entity

import "time"

// SectorReturn devolución de un equipo por parte del sector solicitante (flujo distinto de la devolución a proveedor).
type SectorReturn struct {
	ID          int64
	EquipmentID int64
	Sector      string
	Reason      string
	FromState   EquipmentState
	ReceivedBy  string
	CreatedAt   time.Time
}
