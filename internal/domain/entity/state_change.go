package entity

import "time"

// Trigger origen de un cambio de estado.
type Trigger string

// Orígenes de cambio de estado.
const (
	TriggerManual       Trigger = "MANUAL"
	TriggerInspection   Trigger = "INSPECTION"
	TriggerVendorReturn Trigger = "VENDOR_RETURN"
	TriggerReplacement  Trigger = "REPLACEMENT"
	TriggerSectorReturn Trigger = "SECTOR_RETURN"
	TriggerImport       Trigger = "IMPORT"
)

// StateChange entrada del historial de estados de un equipo.
// From vacío indica el alta del equipo.
type StateChange struct {
	ID          int64
	EquipmentID int64
	From        EquipmentState
	To          EquipmentState
	Trigger     Trigger
	Actor       string
	Reason      string
	CreatedAt   time.Time
}
