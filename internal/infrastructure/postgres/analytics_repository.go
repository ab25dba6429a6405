package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetInvoiceStats agrega importes por estado de las facturas del período.
// Usa COALESCE para devolver cero si no hay filas (período sin facturas).
func (r *AnalyticsRepo) GetInvoiceStats(
	ctx context.Context,
	ownerID string,
	from, to time.Time,
) (repository.InvoiceStats, error) {
	const query = `
	SELECT
	    COUNT(*)                                                         AS invoice_count,
	    COALESCE(SUM(amount) FILTER (WHERE status = 'paid'),    0)       AS paid_amount,
	    COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0)       AS pending_amount,
	    COUNT(*)             FILTER (WHERE status = 'overdue')           AS overdue_count,
	    COALESCE(SUM(amount) FILTER (WHERE status = 'overdue'), 0)       AS overdue_amount
	FROM invoices
	WHERE owner_id = $1
	  AND ($2::date IS NULL OR date >= $2)
	  AND ($3::date IS NULL OR date <= $3)`

	var s repository.InvoiceStats
	err := r.q.QueryRow(ctx, query, ownerID, nullTime(from), nullTime(to)).Scan(
		&s.InvoiceCount, &s.PaidAmount, &s.PendingAmount, &s.OverdueCount, &s.OverdueAmount,
	)
	if err != nil {
		return repository.InvoiceStats{}, fmt.Errorf("analytics.GetInvoiceStats: %w", err)
	}
	return s, nil
}

// CountClients devuelve el total de clientes del propietario y cuántos están activos.
func (r *AnalyticsRepo) CountClients(ctx context.Context, ownerID string) (total, active int, err error) {
	const query = `
	SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active')
	FROM clients WHERE owner_id = $1`
	if err := r.q.QueryRow(ctx, query, ownerID).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("analytics.CountClients: %w", err)
	}
	return total, active, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
