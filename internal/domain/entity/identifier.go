package entity

import "time"

// IdentifierField campo identificador único de un equipo.
type IdentifierField string

const (
	FieldMAC                IdentifierField = "mac"
	FieldGPONSerial         IdentifierField = "gpon_serial"
	FieldManufacturerSerial IdentifierField = "manufacturer_serial"
)

// IdentifierFields en el orden en que se verifican.
var IdentifierFields = []IdentifierField{FieldMAC, FieldGPONSerial, FieldManufacturerSerial}

// RetiredIdentifier identificador de un equipo reemplazado; no puede volver a usarse.
type RetiredIdentifier struct {
	Field       IdentifierField
	Value       string
	EquipmentID int64
	RetiredAt   time.Time
}

// Identifiers devuelve los identificadores no vacíos del equipo por campo.
func (e *Equipment) Identifiers() map[IdentifierField]string {
	out := map[IdentifierField]string{
		FieldMAC:        e.MAC,
		FieldGPONSerial: e.GPONSerial,
	}
	if e.ManufacturerSerial != "" {
		out[FieldManufacturerSerial] = e.ManufacturerSerial
	}
	return out
}
