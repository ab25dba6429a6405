// Package ubl exporta facturas como documentos UBL 2.1 (perfil EN 16931, TVA francesa).
package ubl

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	appbilling "github.com/jhoicas/nordiqua-api/internal/application/billing"
	dombilling "github.com/jhoicas/nordiqua-api/internal/domain/billing"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

// Namespaces oficiales UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	customizationID = "urn:cen.eu:en16931:2017"
	currency        = "EUR"
	// Código UNCL1001 380 = factura comercial.
	invoiceTypeCode = "380"
	// Categoría de TVA estándar (UNCL5305).
	vatCategory = "S"
	// Unidad UN/ECE rec 20 "one".
	unitCode = "C62"
)

var _ appbilling.UBLBuilder = (*Builder)(nil)

// Builder construye el XML con etree y calcula la huella SHA-256 de su forma C14N.
type Builder struct{}

// NewBuilder crea el servicio.
func NewBuilder() *Builder { return &Builder{} }

// BuildInvoice genera el documento Invoice y devuelve (xml, digest base64).
func (b *Builder) BuildInvoice(doc appbilling.InvoiceDocument) ([]byte, string, error) {
	if doc.Invoice == nil || doc.Issuer == nil {
		return nil, "", fmt.Errorf("ubl: faltan factura o emisor")
	}
	inv := doc.Invoice

	d := etree.NewDocument()
	root := d.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "CustomizationID", customizationID)
	cbc(root, "ID", inv.Number)
	cbc(root, "IssueDate", inv.Date.Format("2006-01-02"))
	if inv.DueDate != nil {
		cbc(root, "DueDate", inv.DueDate.Format("2006-01-02"))
	}
	cbc(root, "InvoiceTypeCode", invoiceTypeCode)
	if inv.Notes != "" {
		cbc(root, "Note", inv.Notes)
	}
	cbc(root, "DocumentCurrencyCode", currency)

	// ---- cac:AccountingSupplierParty (emisor)
	supplier := root.CreateElement("cac:AccountingSupplierParty").CreateElement("cac:Party")
	writeParty(supplier, doc.Issuer.Name, doc.Issuer.Email, "")

	// ---- cac:AccountingCustomerParty
	customer := root.CreateElement("cac:AccountingCustomerParty").CreateElement("cac:Party")
	if doc.Client != nil {
		writeParty(customer, doc.Client.Name, doc.Client.Email, doc.Client.Address)
	} else {
		writeParty(customer, inv.ClientName, "", "")
	}

	// ---- cac:TaxTotal
	taxTotal := root.CreateElement("cac:TaxTotal")
	amount(taxTotal, "TaxAmount", doc.Totals.TVA)
	sub := taxTotal.CreateElement("cac:TaxSubtotal")
	amount(sub, "TaxableAmount", doc.Totals.Total)
	amount(sub, "TaxAmount", doc.Totals.TVA)
	writeTaxCategory(sub.CreateElement("cac:TaxCategory"))

	// ---- cac:LegalMonetaryTotal
	monetary := root.CreateElement("cac:LegalMonetaryTotal")
	amount(monetary, "LineExtensionAmount", doc.Totals.Total)
	amount(monetary, "TaxExclusiveAmount", doc.Totals.Total)
	amount(monetary, "TaxInclusiveAmount", doc.Totals.TotalTTC)
	amount(monetary, "PayableAmount", doc.Totals.TotalTTC)

	// ---- cac:InvoiceLine (cada línea; sin líneas, una sola con el total HT)
	items := inv.Items
	if len(items) == 0 {
		items = []entity.InvoiceItem{{Description: "Prestation", Quantity: decimal.NewFromInt(1), Price: doc.Totals.Total}}
	}
	for i, it := range items {
		writeLine(root, i+1, it)
	}

	d.Indent(2)
	body, err := d.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("ubl: serializar: %w", err)
	}

	digest, err := Digest(body)
	if err != nil {
		return nil, "", err
	}
	out := append([]byte(xml.Header), body...)
	return out, digest, nil
}

// Digest devuelve el SHA-256 en base64 de la forma canónica (C14N) del documento.
func Digest(data []byte) (string, error) {
	canonical, err := canonicalizeXML(data)
	if err != nil {
		return "", fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func writeParty(party *etree.Element, name, email, address string) {
	party.CreateElement("cac:PartyName").CreateElement("cbc:Name").SetText(name)
	if address != "" {
		addr := party.CreateElement("cac:PostalAddress")
		cbc(addr, "StreetName", address)
		addr.CreateElement("cac:Country").CreateElement("cbc:IdentificationCode").SetText("FR")
	}
	legal := party.CreateElement("cac:PartyLegalEntity")
	cbc(legal, "RegistrationName", name)
	if email != "" {
		cbc(party.CreateElement("cac:Contact"), "ElectronicMail", email)
	}
}

func writeTaxCategory(cat *etree.Element) {
	cbc(cat, "ID", vatCategory)
	cbc(cat, "Percent", formatDecimal(dombilling.VATRate.Mul(decimal.NewFromInt(100))))
	cbc(cat.CreateElement("cac:TaxScheme"), "ID", "VAT")
}

func writeLine(root *etree.Element, n int, it entity.InvoiceItem) {
	line := root.CreateElement("cac:InvoiceLine")
	cbc(line, "ID", strconv.Itoa(n))
	q := line.CreateElement("cbc:InvoicedQuantity")
	q.CreateAttr("unitCode", unitCode)
	q.SetText(it.Quantity.String())
	amount(line, "LineExtensionAmount", it.LineTotal())

	item := line.CreateElement("cac:Item")
	cbc(item, "Name", it.Description)
	writeTaxCategory(item.CreateElement("cac:ClassifiedTaxCategory"))

	price := line.CreateElement("cac:Price")
	amount(price, "PriceAmount", it.Price)
}

func cbc(parent *etree.Element, local, value string) {
	parent.CreateElement("cbc:" + local).SetText(value)
}

func amount(parent *etree.Element, local string, value decimal.Decimal) {
	el := parent.CreateElement("cbc:" + local)
	el.CreateAttr("currencyID", currency)
	el.SetText(formatDecimal(value))
}

func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}
