package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStats agregados de facturas de un usuario.
type InvoiceStats struct {
	InvoiceCount  int
	PaidAmount    decimal.Decimal
	PendingAmount decimal.Decimal
	OverdueCount  int
	OverdueAmount decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura para el dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetInvoiceStats agrega las facturas del usuario con fecha en [from, to].
	// from/to en cero = sin límite.
	GetInvoiceStats(ctx context.Context, ownerID string, from, to time.Time) (InvoiceStats, error)
	// CountClients devuelve el total de clientes y cuántos están activos.
	CountClients(ctx context.Context, ownerID string) (total, active int, err error)
}
