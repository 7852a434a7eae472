package entity

import "time"

// EquipmentState estado del ciclo de vida de un equipo (ONU).
type EquipmentState string

// Estados de equipo.
const (
	StateNew              EquipmentState = "NEW"
	StateAvailable        EquipmentState = "AVAILABLE"
	StateReserved         EquipmentState = "RESERVED"
	StateAssigned         EquipmentState = "ASSIGNED"
	StateInstalled        EquipmentState = "INSTALLED"
	StateInLab            EquipmentState = "EN_LAB"
	StateDefective        EquipmentState = "DEFECTIVE"
	StateReturnedToVendor EquipmentState = "RETURNED_TO_VENDOR"
	StateReEntered        EquipmentState = "RE_ENTERED"
	StateDecommissioned   EquipmentState = "DECOMMISSIONED"
)

// AllEquipmentStates en orden del ciclo de vida.
var AllEquipmentStates = []EquipmentState{
	StateNew, StateAvailable, StateReserved, StateAssigned, StateInstalled,
	StateInLab, StateDefective, StateReturnedToVendor, StateReEntered, StateDecommissioned,
}

// Equipment representa una unidad física rastreada (ONU).
// MAC, GPONSerial y ManufacturerSerial (si no está vacío) son únicos en toda la población.
type Equipment struct {
	ID                 int64
	Code               string // código interno: <ItemCode>-<MAC sin separadores>
	ItemCode           string
	MAC                string
	GPONSerial         string
	ManufacturerSerial string // vacío = sin serie de fabricante
	State              EquipmentState
	BatchID            int64
	DeliveryID         *int64
	ModelID            int64
	WarehouseID        int64
	ReplacesID         *int64 // equipo retirado al que reemplaza
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone devuelve una copia profunda.
func (e *Equipment) Clone() *Equipment {
	if e == nil {
		return nil
	}
	c := *e
	c.DeliveryID = cloneInt64Ptr(e.DeliveryID)
	c.ReplacesID = cloneInt64Ptr(e.ReplacesID)
	return &c
}

// EquipmentFilter criterios de listado.
type EquipmentFilter struct {
	State       EquipmentState
	ModelID     int64
	BatchID     int64
	WarehouseID int64
	DeliveryID  int64
	Search      string // código, MAC, serie GPON o serie de fabricante
	Limit       int
	Offset      int
}

func cloneInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
