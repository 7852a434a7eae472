package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest entrada para registrar un lote.
type CreateBatchRequest struct {
	Code             string          `json:"code" validate:"required"`
	Vendor           string          `json:"vendor" validate:"required"`
	ExpectedQuantity int             `json:"expected_quantity" validate:"required,gt=0"`
	WarehouseID      int64           `json:"warehouse_id" validate:"required"`
	ModelID          int64           `json:"model_id" validate:"required"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Notes            string          `json:"notes"`
}

// ProgressResponse agregados derivados del lote.
type ProgressResponse struct {
	Expected   int             `json:"expected"`
	Received   int             `json:"received"`
	Pending    int             `json:"pending"`
	Percent    decimal.Decimal `json:"percent"`
	Unassigned int             `json:"unassigned"`
}

// BatchResponse salida de un lote con su progreso.
type BatchResponse struct {
	ID               int64            `json:"id"`
	Code             string           `json:"code"`
	Vendor           string           `json:"vendor"`
	ExpectedQuantity int              `json:"expected_quantity"`
	WarehouseID      int64            `json:"warehouse_id"`
	ModelID          int64            `json:"model_id"`
	UnitCost         decimal.Decimal  `json:"unit_cost"`
	Notes            string           `json:"notes,omitempty"`
	CreatedBy        string           `json:"created_by"`
	Progress         ProgressResponse `json:"progress"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BatchListResponse lista paginada de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// CreateDeliveryRequest entrada para registrar una entrega parcial.
// DeliveryDate acepta YYYY-MM-DD o RFC3339. Number es opcional (reintentos).
type CreateDeliveryRequest struct {
	DeliveryDate string `json:"delivery_date" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	State        string `json:"state" validate:"required"`
	Notes        string `json:"notes"`
	Number       int    `json:"number"`
}

// DeliveryResponse salida de una entrega parcial.
type DeliveryResponse struct {
	ID             int64     `json:"id"`
	BatchID        int64     `json:"batch_id"`
	Number         int       `json:"number"`
	DeliveryDate   time.Time `json:"delivery_date"`
	Quantity       int       `json:"quantity"`
	State          string    `json:"state"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      string    `json:"created_by"`
	EquipmentCount int       `json:"equipment_count"`
	Replayed       bool      `json:"replayed,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeliveryListResponse entregas del lote y progreso recalculado.
type DeliveryListResponse struct {
	Items    []DeliveryResponse `json:"items"`
	Progress ProgressResponse   `json:"progress"`
}

// DeleteRequest intención de borrado (query string).
type DeleteRequest struct {
	Strategy string `query:"strategy"`
	Force    bool   `query:"force"`
}

// DependentResponse equipo mostrado en la muestra de confirmación.
type DependentResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	MAC  string `json:"mac"`
}

// DeletionResponse resultado de un borrado en dos fases.
type DeletionResponse struct {
	Deleted              bool                `json:"deleted"`
	Strategy             string              `json:"strategy,omitempty"`
	Affected             int                 `json:"affected"`
	RequiresConfirmation bool                `json:"requires_confirmation"`
	DependentCount       int                 `json:"dependent_count,omitempty"`
	Sample               []DependentResponse `json:"sample,omitempty"`
	Strategies           []string            `json:"strategies,omitempty"`
}

// ImportRow fila de importación de equipos.
type ImportRow struct {
	MAC                string `json:"mac"`
	GPONSerial         string `json:"gpon_serial"`
	ManufacturerSerial string `json:"manufacturer_serial"`
}

// ImportRequest importación de equipos a una entrega del lote.
// ItemCode vacío usa el del modelo del lote.
type ImportRequest struct {
	DeliveryNumber int         `json:"delivery_number" validate:"required"`
	ItemCode       string      `json:"item_code"`
	DryRun         bool        `json:"dry_run"`
	Rows           []ImportRow `json:"rows" validate:"required,min=1"`
}

// ImportRowError fila rechazada.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ImportResponse resultado de la importación.
type ImportResponse struct {
	DryRun       bool             `json:"dry_run"`
	Total        int              `json:"total"`
	Valid        int              `json:"valid"`
	Created      int              `json:"created"`
	EquipmentIDs []int64          `json:"equipment_ids,omitempty"`
	Errors       []ImportRowError `json:"errors"`
}
