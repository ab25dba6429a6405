package catalog

import (
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

var productSortFields = set("name", "type", "description", "price", "unit", "tax", "reference")

// ProductFilters filtros de la vista de productos. Active nil no filtra.
type ProductFilters struct {
	Type   string // all, product, service
	Active *bool
}

// ProductQuery búsqueda + filtros + orden sobre productos.
type ProductQuery struct {
	Search  string
	Filters ProductFilters
	Sort    Sort
}

// Validate rechaza valores de filtro u orden desconocidos.
func (q ProductQuery) Validate() error {
	verr := domain.NewValidationError()
	switch q.Filters.Type {
	case "", FilterAll, entity.ProductTypeProduct, entity.ProductTypeService:
	default:
		verr.Add("type", "debe ser all, product o service")
	}
	q.Sort.validate(verr, productSortFields)
	return verr.OrNil()
}

// Apply devuelve la vista: búsqueda, luego filtros, luego orden.
func (q ProductQuery) Apply(products []*entity.Product) []*entity.Product {
	out := SearchProducts(products, q.Search)
	out = FilterProducts(out, q.Filters)
	SortProducts(out, q.Sort)
	return out
}

// SearchProducts busca en nombre, descripción y referencia.
func SearchProducts(products []*entity.Product, term string) []*entity.Product {
	m := newMatcher(term)
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		if m == nil || m.any(p.Name, p.Description, p.Reference) {
			out = append(out, p)
		}
	}
	return out
}

// FilterProducts aplica tipo y estado activo.
func FilterProducts(products []*entity.Product, f ProductFilters) []*entity.Product {
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		if f.Type != "" && f.Type != FilterAll && p.Type != f.Type {
			continue
		}
		if f.Active != nil && p.Active != *f.Active {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts ordena in place; sin campo de orden no toca la colección.
func SortProducts(products []*entity.Product, s Sort) {
	sortStable(products, s, productComparator(s.Field))
}

func productComparator(field string) func(a, b *entity.Product) int {
	cmp := newComparer()
	switch field {
	case "name":
		return func(a, b *entity.Product) int { return cmp.strings(a.Name, b.Name) }
	case "type":
		return func(a, b *entity.Product) int { return cmp.strings(a.Type, b.Type) }
	case "description":
		return func(a, b *entity.Product) int { return cmp.strings(a.Description, b.Description) }
	case "unit":
		return func(a, b *entity.Product) int { return cmp.strings(a.Unit, b.Unit) }
	case "reference":
		return func(a, b *entity.Product) int { return cmp.strings(a.Reference, b.Reference) }
	case "price":
		return func(a, b *entity.Product) int { return compareDecimals(a.Price, b.Price) }
	case "tax":
		return func(a, b *entity.Product) int { return compareDecimals(a.Tax, b.Tax) }
	}
	return nil
}
