package billing

import (
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// VATRate tasa de TVA aplicada a todas las facturas (20 %).
var VATRate = decimal.NewFromFloat(0.2)

// Totals importes de una factura.
type Totals struct {
	Total    decimal.Decimal // HT
	TVA      decimal.Decimal
	TotalTTC decimal.Decimal
}

// Límites de las columnas NUMERIC(14,2) y NUMERIC(12,3).
var (
	MaxAmount   = decimal.RequireFromString("999999999999.99")
	MaxQuantity = decimal.RequireFromString("999999999.999")
)

// Escalas con las que se almacenan precios y cantidades.
const (
	AmountScale   = 2
	QuantityScale = 3
)

// ComputeTotals calcula los importes de una factura (servicio de dominio).
// Total = Σ cantidad × precio redondeado a céntimos; TVA = Total × 0,20 redondeada;
// TotalTTC = Total + TVA, de modo que la suma mostrada siempre cuadra.
func ComputeTotals(items []entity.InvoiceItem) Totals {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	total = total.Round(AmountScale)
	tva := total.Mul(VATRate).Round(AmountScale)
	return Totals{
		Total:    total,
		TVA:      tva,
		TotalTTC: total.Add(tva),
	}
}
