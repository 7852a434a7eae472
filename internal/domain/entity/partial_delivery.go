package entity

import "time"

// DeliveryState estado declarado de una entrega parcial.
type DeliveryState string

const (
	DeliveryPartial  DeliveryState = "PARTIAL"
	DeliveryComplete DeliveryState = "COMPLETE"
	DeliveryPending  DeliveryState = "PENDING"
)

// ValidDeliveryStates estados aceptados para una entrega.
var ValidDeliveryStates = []DeliveryState{DeliveryPartial, DeliveryComplete, DeliveryPending}

// PartialDelivery incremento fechado de un lote. Number es 1..N denso dentro del lote.
type PartialDelivery struct {
	ID               int64
	BatchID          int64
	Number           int
	DeliveryDate     time.Time
	DeclaredQuantity int
	State            DeliveryState
	Notes            string
	CreatedBy        string
	EquipmentCount   int // derivado en lectura
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
