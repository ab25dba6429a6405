package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientRequest entrada para crear o reemplazar un cliente (POST/PUT).
type ClientRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
	Status  string `json:"status"` // active (por defecto) | inactive
}

// ClientResponse salida de un cliente con sus agregados de facturación.
type ClientResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Contact       string          `json:"contact"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Website       string          `json:"website,omitempty"`
	Address       string          `json:"address"`
	InvoicesCount int             `json:"invoicesCount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InvoiceItemDTO línea de factura (entrada y salida).
type InvoiceItemDTO struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceRequest entrada para crear o reemplazar una factura.
// Con líneas, Amount se recalcula como total TTC; sin líneas se conserva el enviado.
type InvoiceRequest struct {
	ClientID string           `json:"clientId"`
	Date     string           `json:"date"`    // YYYY-MM-DD, por defecto hoy
	DueDate  string           `json:"dueDate"` // YYYY-MM-DD, opcional
	Amount   *decimal.Decimal `json:"amount"`
	Status   string           `json:"status"` // pending (por defecto) | paid | overdue
	Notes    string           `json:"notes"`
	Items    []InvoiceItemDTO `json:"items"`
}

// TotalsDTO importes calculados de una factura.
type TotalsDTO struct {
	Total    decimal.Decimal `json:"total"`
	TVA      decimal.Decimal `json:"tva"`
	TotalTTC decimal.Decimal `json:"totalTTC"`
}

// InvoiceResponse salida de una factura. Items y Totals solo en el detalle.
type InvoiceResponse struct {
	ID        string           `json:"id"`
	Number    string           `json:"number"`
	ClientID  string           `json:"clientId,omitempty"`
	Client    string           `json:"client"`
	Date      string           `json:"date"`
	DueDate   string           `json:"dueDate,omitempty"`
	Amount    decimal.Decimal  `json:"amount"`
	Status    string           `json:"status"`
	Notes     string           `json:"notes,omitempty"`
	Items     []InvoiceItemDTO `json:"items,omitempty"`
	Totals    *TotalsDTO       `json:"totals,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// UBLExport documento UBL y huella de su forma canónica.
type UBLExport struct {
	Filename string
	XML      []byte
	Digest   string // SHA-256 en base64 de la forma canónica (C14N)
}
