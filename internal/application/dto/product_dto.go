package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto o servicio.
type CreateProductRequest struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"` // product | service
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Unit        string           `json:"unit"`
	Tax         *decimal.Decimal `json:"tax"` // porcentaje; por defecto 20
	Reference   string           `json:"reference"`
	Active      *bool            `json:"active"` // por defecto true
}

// UpdateProductRequest actualización parcial; nil = no se modifica.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Type        *string          `json:"type"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit"`
	Tax         *decimal.Decimal `json:"tax"`
	Reference   *string          `json:"reference"`
	Active      *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Tax         decimal.Decimal `json:"tax"`
	Reference   string          `json:"reference"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
