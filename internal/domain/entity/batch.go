package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch lote de compra/recepción de un proveedor, recibido en una o más entregas parciales.
// Recibido, pendiente y porcentaje se calculan siempre desde las entregas (ver BatchProgress).
type Batch struct {
	ID               int64
	Code             string // único
	Vendor           string
	ExpectedQuantity int
	WarehouseID      int64
	ModelID          int64
	UnitCost         decimal.Decimal
	Notes            string
	CreatedBy        string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BatchProgress agregados derivados de un lote.
type BatchProgress struct {
	Expected   int
	Received   int
	Pending    int
	Percent    decimal.Decimal
	Unassigned int // equipos del lote sin entrega (desvinculados o reemplazos)
}
