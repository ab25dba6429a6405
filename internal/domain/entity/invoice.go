package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// IsValidInvoiceStatus indica si status es un estado conocido.
func IsValidInvoiceStatus(status string) bool {
	switch status {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice representa la cabecera de una factura.
// ClientID queda vacío si el cliente fue eliminado; ClientName conserva el nombre facturado.
type Invoice struct {
	ID         string
	OwnerID    string
	Number     string // INV-2024-001
	ClientID   string
	ClientName string
	Date       time.Time
	DueDate    *time.Time
	Amount     decimal.Decimal // total TTC
	Status     string
	Notes      string
	Items      []InvoiceItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceItem representa una línea de factura.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Position    int
	Description string
	Quantity    decimal.Decimal
	Price       decimal.Decimal // precio unitario HT
}

// LineTotal devuelve cantidad × precio.
func (i InvoiceItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}
