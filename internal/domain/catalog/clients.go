package catalog

import (
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var clientSortFields = set("name", "contact", "email", "phone", "address", "invoicesCount", "totalAmount", "status")

// ClientFilters filtros de la vista de clientes. Los punteros nil no filtran.
type ClientFilters struct {
	Status      string // all, active, inactive
	MinInvoices *int
	MinAmount   *decimal.Decimal
}

// ClientQuery búsqueda + filtros + orden sobre clientes.
type ClientQuery struct {
	Search  string
	Filters ClientFilters
	Sort    Sort
}

// Validate rechaza valores de filtro u orden desconocidos.
func (q ClientQuery) Validate() error {
	verr := domain.NewValidationError()
	switch q.Filters.Status {
	case "", FilterAll, entity.ClientStatusActive, entity.ClientStatusInactive:
	default:
		verr.Add("status", "debe ser all, active o inactive")
	}
	if q.Filters.MinInvoices != nil && *q.Filters.MinInvoices < 0 {
		verr.Add("min_invoices", "no puede ser negativo")
	}
	q.Sort.validate(verr, clientSortFields)
	return verr.OrNil()
}

// Apply devuelve la vista: búsqueda, luego filtros, luego orden.
func (q ClientQuery) Apply(clients []*entity.Client) []*entity.Client {
	out := SearchClients(clients, q.Search)
	out = FilterClients(out, q.Filters)
	SortClients(out, q.Sort)
	return out
}

// SearchClients devuelve los clientes cuyo nombre, contacto o email contienen term (sin distinguir mayúsculas).
func SearchClients(clients []*entity.Client, term string) []*entity.Client {
	m := newMatcher(term)
	out := make([]*entity.Client, 0, len(clients))
	for _, c := range clients {
		if m == nil || m.any(c.Name, c.Contact, c.Email) {
			out = append(out, c)
		}
	}
	return out
}

// FilterClients aplica estado, mínimo de facturas y mínimo de importe.
func FilterClients(clients []*entity.Client, f ClientFilters) []*entity.Client {
	out := make([]*entity.Client, 0, len(clients))
	for _, c := range clients {
		if f.Status != "" && f.Status != FilterAll && c.Status != f.Status {
			continue
		}
		if f.MinInvoices != nil && c.InvoicesCount < *f.MinInvoices {
			continue
		}
		if f.MinAmount != nil && c.TotalAmount.LessThan(*f.MinAmount) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortClients ordena in place; sin campo de orden no toca la colección.
func SortClients(clients []*entity.Client, s Sort) {
	sortStable(clients, s, clientComparator(s.Field))
}

func clientComparator(field string) func(a, b *entity.Client) int {
	cmp := newComparer()
	switch field {
	case "name":
		return func(a, b *entity.Client) int { return cmp.strings(a.Name, b.Name) }
	case "contact":
		return func(a, b *entity.Client) int { return cmp.strings(a.Contact, b.Contact) }
	case "email":
		return func(a, b *entity.Client) int { return cmp.strings(a.Email, b.Email) }
	case "phone":
		return func(a, b *entity.Client) int { return cmp.strings(a.Phone, b.Phone) }
	case "address":
		return func(a, b *entity.Client) int { return cmp.strings(a.Address, b.Address) }
	case "status":
		return func(a, b *entity.Client) int { return cmp.strings(a.Status, b.Status) }
	case "invoicesCount":
		return func(a, b *entity.Client) int { return compareInts(a.InvoicesCount, b.InvoicesCount) }
	case "totalAmount":
		return func(a, b *entity.Client) int { return compareDecimals(a.TotalAmount, b.TotalAmount) }
	}
	return nil
}
