package dto

import "time"

// CreateLocationRequest body para POST /api/stock/locations.
type CreateLocationRequest struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=500"`
	IsVirtual   bool   `json:"is_virtual"`
}

// UpdateLocationRequest body para PUT /api/stock/locations/:id.
type UpdateLocationRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsVirtual   bool      `json:"is_virtual"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LocationListResponse lista de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
}
