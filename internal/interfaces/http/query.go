package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/catalog"
)

// Parámetros de listado: search, status, min_invoices, min_amount, type, active, sort, direction.

func parseSort(c *fiber.Ctx) catalog.Sort {
	return catalog.Sort{
		Field:     strings.TrimSpace(c.Query("sort")),
		Direction: catalog.Direction(strings.ToLower(strings.TrimSpace(c.Query("direction")))),
	}
}

func parseClientQuery(c *fiber.Ctx) (catalog.ClientQuery, error) {
	verr := domain.NewValidationError()
	q := catalog.ClientQuery{
		Search: c.Query("search"),
		Filters: catalog.ClientFilters{
			Status: strings.TrimSpace(c.Query("status")),
		},
		Sort: parseSort(c),
	}
	if raw := strings.TrimSpace(c.Query("min_invoices")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("min_invoices", "debe ser un entero")
		} else {
			q.Filters.MinInvoices = &n
		}
	}
	if raw := strings.TrimSpace(c.Query("min_amount")); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			verr.Add("min_amount", "debe ser un número")
		} else {
			q.Filters.MinAmount = &d
		}
	}
	return q, verr.OrNil()
}

func parseInvoiceQuery(c *fiber.Ctx) catalog.InvoiceQuery {
	return catalog.InvoiceQuery{
		Search: c.Query("search"),
		Status: strings.TrimSpace(c.Query("status")),
		Sort:   parseSort(c),
	}
}

func parseProductQuery(c *fiber.Ctx) (catalog.ProductQuery, error) {
	q := catalog.ProductQuery{
		Search:  c.Query("search"),
		Filters: catalog.ProductFilters{Type: strings.TrimSpace(c.Query("type"))},
		Sort:    parseSort(c),
	}
	switch raw := strings.ToLower(strings.TrimSpace(c.Query("active"))); raw {
	case "", catalog.FilterAll:
	case "true", "false":
		active := raw == "true"
		q.Filters.Active = &active
	default:
		return q, domain.NewValidationError(domain.FieldError{Field: "active", Message: "debe ser true o false"})
	}
	return q, nil
}
