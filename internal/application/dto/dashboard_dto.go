package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	// Acumulado de todas las facturas
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`  // facturas pagadas
	PendingAmount decimal.Decimal `json:"pendingAmount"` // facturas pendientes
	OverdueAmount decimal.Decimal `json:"overdueAmount"`
	OverdueCount  int             `json:"overdueCount"`
	InvoicesCount int             `json:"invoicesCount"`

	// Mes en curso
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	MonthlyCount   int             `json:"monthlyCount"`

	ClientsCount       int `json:"clientsCount"`
	ActiveClientsCount int `json:"activeClientsCount"`

	DateLabel string `json:"dateLabel"` // ej: "Mars 2024"
}
