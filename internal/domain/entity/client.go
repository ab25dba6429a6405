package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un cliente.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client representa un cliente facturable de un usuario.
// InvoicesCount y TotalAmount no se persisten: se derivan de las facturas al leer.
type Client struct {
	ID            string
	OwnerID       string
	Name          string
	Contact       string
	Email         string
	Phone         string
	Website       string
	Address       string
	Status        string
	InvoicesCount int
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
