// Package catalog contiene las vistas de búsqueda, filtro y orden sobre colecciones de clientes,
// productos y facturas. Son funciones puras: no guardan estado ni hacen I/O, reciben una
// colección y devuelven una nueva sin modificar la entrada.
package catalog

import (
	"sort"
	"strings"

	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction sentido del orden.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// FilterAll valor de filtro que no restringe nada.
const FilterAll = "all"

// Sort campo y sentido del orden. Field vacío conserva el orden de entrada.
type Sort struct {
	Field     string
	Direction Direction
}

func (s Sort) validate(verr *domain.ValidationError, fields map[string]struct{}) {
	if s.Field != "" {
		if _, ok := fields[s.Field]; !ok {
			verr.Add("sort", "campo de orden desconocido: "+s.Field)
		}
	}
	if s.Direction != "" && s.Direction != Asc && s.Direction != Desc {
		verr.Add("direction", "debe ser asc o desc")
	}
}

func (s Sort) modifier() int {
	if s.Direction == Desc {
		return -1
	}
	return 1
}

// matcher compara texto sin distinguir mayúsculas (plegado Unicode).
type matcher struct {
	folder cases.Caser
	needle string
}

func newMatcher(term string) *matcher {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	f := cases.Fold()
	return &matcher{folder: f, needle: f.String(term)}
}

func (m *matcher) any(values ...string) bool {
	for _, v := range values {
		if strings.Contains(m.folder.String(v), m.needle) {
			return true
		}
	}
	return false
}

// comparer ordena cadenas con la colación francesa y números de forma numérica.
type comparer struct {
	col *collate.Collator
}

func newComparer() *comparer {
	return &comparer{col: collate.New(language.French, collate.IgnoreCase)}
}

func (c *comparer) strings(a, b string) int {
	return c.col.CompareString(a, b)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDecimals(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

// sortStable ordena in place con cmp y el sentido de s; los empates conservan el orden previo.
func sortStable[T any](items []T, s Sort, cmp func(a, b T) int) {
	if s.Field == "" || cmp == nil {
		return
	}
	mod := s.modifier()
	sort.SliceStable(items, func(i, j int) bool {
		return cmp(items[i], items[j])*mod < 0
	})
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
