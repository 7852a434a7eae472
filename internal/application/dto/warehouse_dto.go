package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateModelRequest entrada para registrar un modelo de equipo.
type CreateModelRequest struct {
	Brand    string `json:"brand" validate:"required"`
	Name     string `json:"name" validate:"required"`
	ItemCode string `json:"item_code" validate:"required"`
}

// ModelResponse salida de un modelo de equipo.
type ModelResponse struct {
	ID        int64     `json:"id"`
	Brand     string    `json:"brand"`
	Name      string    `json:"name"`
	ItemCode  string    `json:"item_code"`
	CreatedAt time.Time `json:"created_at"`
}

// ModelListResponse lista paginada de modelos.
type ModelListResponse struct {
	Items []ModelResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
