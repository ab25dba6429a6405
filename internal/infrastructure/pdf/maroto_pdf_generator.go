// Package pdf genera la factura en PDF (formato francés: HT, TVA 20 %, TTC).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + email      │  FACTURE + N° + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + contacto + dirección                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Description | Qté | Prix unit. HT | Total HT         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total HT / TVA 20 % / Total TTC                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: notas + QR con número e importe                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/nordiqua-api/internal/application/billing"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 30, Green: 64, Blue: 175}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var statusLabels = map[string]string{
	entity.InvoiceStatusPending: "En attente",
	entity.InvoiceStatusPaid:    "Payée",
	entity.InvoiceStatusOverdue: "En retard",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc appbilling.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Issuer == nil {
		return nil, fmt.Errorf("pdf: factura o emisor vacío")
	}
	inv := doc.Invoice

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture "+inv.Number, true).
		WithAuthor(doc.Issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv, doc.Issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(inv, doc.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de líneas; sin líneas se muestra una sola con el importe HT.
	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(inv.Items, doc.Totals.Total) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(doc) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y FACTURE + número + fechas (der).
func headerRow(inv *entity.Invoice, issuer *entity.User) core.Row {
	dates := "Date : " + inv.Date.Format("02/01/2006")
	if inv.DueDate != nil {
		dates += "   Échéance : " + inv.DueDate.Format("02/01/2006")
	}

	return row.New(20).Add(
		col.New(7).Add(
			text.New(issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(issuer.Email, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURE", props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 9,
			}),
			text.New(dates, props.Text{
				Size: 8, Align: align.Right, Top: 15, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del cliente; si fue eliminado solo queda el nombre facturado.
func clientRow(inv *entity.Invoice, client *entity.Client) core.Row {
	details := "-"
	if client != nil {
		details = fmt.Sprintf("%s   |   %s   |   %s",
			nonEmpty(client.Contact, "-"),
			nonEmpty(client.Email, "-"),
			nonEmpty(client.Phone, "-"),
		)
	}
	address := ""
	if client != nil {
		address = client.Address
	}

	return row.New(20).Add(
		col.New(8).Add(
			text.New("FACTURÉ À", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.ClientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(details, props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New(address, props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Statut : "+nonEmpty(statusLabels[inv.Status], inv.Status), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 6,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Description", 6, align.Left),
		h("Qté", 2, align.Center),
		h("Prix unit. HT", 2, align.Right),
		h("Total HT", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea de la factura.
func tableDetailRows(items []entity.InvoiceItem, totalHT decimal.Decimal) []core.Row {
	if len(items) == 0 {
		items = []entity.InvoiceItem{{Description: "Prestation", Quantity: decimal.NewFromInt(1), Price: totalHT}}
	}
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatQuantity(it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(it.Price),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(it.LineTotal()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: Total HT, TVA y Total TTC alineados a la derecha.
func totalsRow(doc appbilling.InvoiceDocument) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: right, Top: 12,
		})
	}

	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Total HT :"),
			text.New("TVA 20 % :", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
			grand("Total TTC :", 2),
		),
		col.New(3).Add(
			value(formatMoney(doc.Totals.Total), 0),
			value(formatMoney(doc.Totals.TVA), 6),
			grand(formatMoney(doc.Totals.TotalTTC), 1),
		),
	)
}

// footerRows: notas + QR con número e importe TTC.
func footerRows(doc appbilling.InvoiceDocument) []core.Row {
	inv := doc.Invoice
	var rows []core.Row

	if inv.Notes != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New("Notes", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(inv.Notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
		)))
	}

	qr := fmt.Sprintf("%s|%s|%s EUR", doc.Issuer.Email, inv.Number, doc.Totals.TotalTTC.StringFixed(2))
	rows = append(rows, row.New(35).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Conditions de paiement : à réception de facture.", props.Text{
				Size: 8, Top: 6, Left: 3, Color: colorGray,
			}),
			text.New("En cas de retard de paiement, une indemnité forfaitaire de 40 € pour frais de recouvrement sera exigée.", props.Text{
				Size: 7, Top: 14, Left: 3, Color: colorGray,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea un importe al estilo francés.
// Ej: 1234.5 → "1 234,50 €"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// formatQuantity quita los ceros decimales sobrantes: 2.000 → "2", 1.5 → "1,5".
func formatQuantity(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}
