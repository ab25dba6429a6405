package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto.
const (
	ProductTypeProduct = "product"
	ProductTypeService = "service"
)

// Product representa un producto o servicio del catálogo de un usuario.
type Product struct {
	ID          string
	OwnerID     string
	Name        string
	Type        string // product, service
	Description string
	Price       decimal.Decimal // precio unitario HT
	Unit        string          // unité, heure, jour...
	Tax         decimal.Decimal // porcentaje, ej. 20
	Reference   string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
