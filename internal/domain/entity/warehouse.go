package entity

import "time"

// Warehouse representa una bodega donde se almacenan los equipos.
type Warehouse struct {
	ID        int64
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EquipmentModel modelo de equipo (marca + referencia) con su código de ítem.
type EquipmentModel struct {
	ID        int64
	Brand     string
	Name      string
	ItemCode  string
	CreatedAt time.Time
}
