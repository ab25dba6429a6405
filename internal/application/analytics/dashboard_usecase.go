// Package analytics contiene los casos de uso del tablero de facturación.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen de facturación: acumulado total y mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO del usuario.
//
// Tres llamadas en paralelo:
//  1. GetInvoiceStats(sin límite) → acumulados por estado
//  2. GetInvoiceStats(mes)        → facturado del mes
//  3. CountClients                → clientes totales y activos
func (uc *DashboardUseCase) GetSummary(ctx context.Context, ownerID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Mes en curso: día 1 – último día del mes
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	// ── Goroutines para paralelizar las 3 consultas DB ────────────────────────
	type statsResult struct {
		stats repository.InvoiceStats
		err   error
	}
	type clientsResult struct {
		total, active int
		err           error
	}

	allCh := make(chan statsResult, 1)
	monthCh := make(chan statsResult, 1)
	clientsCh := make(chan clientsResult, 1)

	go func() {
		s, err := uc.analyticsRepo.GetInvoiceStats(ctx, ownerID, time.Time{}, time.Time{})
		allCh <- statsResult{s, err}
	}()
	go func() {
		s, err := uc.analyticsRepo.GetInvoiceStats(ctx, ownerID, monthStart, monthEnd)
		monthCh <- statsResult{s, err}
	}()
	go func() {
		total, active, err := uc.analyticsRepo.CountClients(ctx, ownerID)
		clientsCh <- clientsResult{total, active, err}
	}()

	all := <-allCh
	month := <-monthCh
	clients := <-clientsCh

	if all.err != nil {
		return nil, fmt.Errorf("dashboard: acumulados: %w", all.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if clients.err != nil {
		return nil, fmt.Errorf("dashboard: clientes: %w", clients.err)
	}

	return &dto.DashboardSummaryDTO{
		TotalRevenue:       all.stats.PaidAmount.Round(2),
		PendingAmount:      all.stats.PendingAmount.Round(2),
		OverdueAmount:      all.stats.OverdueAmount.Round(2),
		OverdueCount:       all.stats.OverdueCount,
		InvoicesCount:      all.stats.InvoiceCount,
		MonthlyRevenue:     month.stats.PaidAmount.Round(2),
		MonthlyCount:       month.stats.InvoiceCount,
		ClientsCount:       clients.total,
		ActiveClientsCount: clients.active,
		DateLabel:          monthLabel(now),
	}, nil
}

// monthLabel devuelve la etiqueta del mes en francés, como la muestra la interfaz: "Mars 2024".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
		"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
