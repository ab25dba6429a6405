package catalog

import (
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

var invoiceSortFields = set("number", "clientName", "date", "amount", "status")

// InvoiceQuery búsqueda + filtro de estado + orden sobre facturas.
type InvoiceQuery struct {
	Search string
	Status string // all, pending, paid, overdue
	Sort   Sort
}

// Validate rechaza valores de filtro u orden desconocidos.
func (q InvoiceQuery) Validate() error {
	verr := domain.NewValidationError()
	if q.Status != "" && q.Status != FilterAll && !entity.IsValidInvoiceStatus(q.Status) {
		verr.Add("status", "debe ser all, pending, paid u overdue")
	}
	q.Sort.validate(verr, invoiceSortFields)
	return verr.OrNil()
}

// Apply devuelve la vista: búsqueda por número o cliente, estado y orden.
func (q InvoiceQuery) Apply(invoices []*entity.Invoice) []*entity.Invoice {
	m := newMatcher(q.Search)
	out := make([]*entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if m != nil && !m.any(inv.Number, inv.ClientName) {
			continue
		}
		if q.Status != "" && q.Status != FilterAll && inv.Status != q.Status {
			continue
		}
		out = append(out, inv)
	}
	sortStable(out, q.Sort, invoiceComparator(q.Sort.Field))
	return out
}

func invoiceComparator(field string) func(a, b *entity.Invoice) int {
	cmp := newComparer()
	switch field {
	case "number":
		return func(a, b *entity.Invoice) int { return cmp.strings(a.Number, b.Number) }
	case "clientName":
		return func(a, b *entity.Invoice) int { return cmp.strings(a.ClientName, b.ClientName) }
	case "status":
		return func(a, b *entity.Invoice) int { return cmp.strings(a.Status, b.Status) }
	case "date":
		return func(a, b *entity.Invoice) int { return a.Date.Compare(b.Date) }
	case "amount":
		return func(a, b *entity.Invoice) int { return compareDecimals(a.Amount, b.Amount) }
	}
	return nil
}
