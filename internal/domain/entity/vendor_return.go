package entity

import "time"

// ReturnState estado de una devolución a proveedor.
type ReturnState string

const (
	ReturnPending   ReturnState = "PENDING"
	ReturnSent      ReturnState = "SENT"
	ReturnConfirmed ReturnState = "CONFIRMED"
)

// ResponseCode clasificación de la respuesta del proveedor.
type ResponseCode string

const (
	ResponseReplacement ResponseCode = "REPLACEMENT" // reemplazo autorizado
	ResponseCredit      ResponseCode = "CREDIT"      // nota crédito
	ResponseRejected    ResponseCode = "REJECTED"
)

// VendorReturn devolución de equipos defectuosos a su proveedor.
// Los ítems se fijan al crear; el estado evoluciona por separado.
type VendorReturn struct {
	ID              int64
	Number          string
	BatchID         int64
	Vendor          string
	Reason          string
	LabReportNumber string
	State           ReturnState
	ResponseCode    ResponseCode // vacío hasta la confirmación
	SentAt          *time.Time
	SentNotes       string
	ConfirmedAt     *time.Time
	ResponseNotes   string
	CreatedBy       string
	Items           []ReturnItem
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReturnItem equipo incluido en una devolución y su eventual reemplazo.
type ReturnItem struct {
	EquipmentID   int64
	ReplacementID *int64
	ReplacedAt    *time.Time
}

// Item devuelve el ítem del equipo indicado, o nil.
func (r *VendorReturn) Item(equipmentID int64) *ReturnItem {
	for i := range r.Items {
		if r.Items[i].EquipmentID == equipmentID {
			return &r.Items[i]
		}
	}
	return nil
}

// EquipmentIDs IDs de los equipos de la devolución en orden de creación.
func (r *VendorReturn) EquipmentIDs() []int64 {
	ids := make([]int64, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.EquipmentID)
	}
	return ids
}

// Clone devuelve una copia profunda.
func (r *VendorReturn) Clone() *VendorReturn {
	if r == nil {
		return nil
	}
	c := *r
	c.SentAt = cloneTimePtr(r.SentAt)
	c.ConfirmedAt = cloneTimePtr(r.ConfirmedAt)
	c.Items = make([]ReturnItem, len(r.Items))
	for i, it := range r.Items {
		c.Items[i] = ReturnItem{
			EquipmentID:   it.EquipmentID,
			ReplacementID: cloneInt64Ptr(it.ReplacementID),
			ReplacedAt:    cloneTimePtr(it.ReplacedAt),
		}
	}
	return &c
}

// ReturnFilter criterios de listado de devoluciones.
type ReturnFilter struct {
	State   ReturnState
	BatchID int64
	Limit   int
	Offset  int
}
