package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/nordiqua-api/internal/domain"
	dombilling "github.com/jhoicas/nordiqua-api/internal/domain/billing"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// documentLoader reúne factura, cliente y emisor para los documentos exportables.
type documentLoader struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
}

func (l documentLoader) load(ctx context.Context, ownerID, invoiceID string) (InvoiceDocument, error) {
	// ── 1. Cargar factura ──
	inv, err := loadInvoice(ctx, l.invoiceRepo, ownerID, invoiceID)
	if err != nil {
		return InvoiceDocument{}, err
	}

	// ── 2. Cargar cliente (puede haber sido eliminado) ──
	var doc InvoiceDocument
	if inv.ClientID != "" {
		client, err := l.clientRepo.GetByID(ctx, ownerID, inv.ClientID)
		if err != nil {
			return InvoiceDocument{}, fmt.Errorf("documento: obtener cliente: %w", err)
		}
		doc.Client = client
	}

	// ── 3. Cargar emisor ──
	issuer, err := l.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return InvoiceDocument{}, fmt.Errorf("documento: obtener emisor: %w", err)
	}
	if issuer == nil {
		return InvoiceDocument{}, domain.ErrUserNotFound
	}

	doc.Invoice = inv
	doc.Issuer = issuer
	doc.Totals = documentTotals(inv.Items, inv.Amount)
	return doc, nil
}

// documentTotals usa las líneas si existen; sin líneas el importe guardado es el TTC.
func documentTotals(items []entity.InvoiceItem, amount decimal.Decimal) dombilling.Totals {
	if len(items) > 0 {
		return dombilling.ComputeTotals(items)
	}
	ht := amount.Div(dombilling.VATRate.Add(decimal.NewFromInt(1))).Round(2)
	return dombilling.Totals{Total: ht, TVA: amount.Sub(ht), TotalTTC: amount}
}

// PDFUseCase genera el PDF de una factura y, si hay archivador configurado, guarda una copia.
type PDFUseCase struct {
	loader    documentLoader
	generator InvoicePDFGenerator
	archiver  PDFArchiver
	log       zerolog.Logger
}

// NewPDFUseCase construye el caso de uso. archiver puede ser nil.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	generator InvoicePDFGenerator,
	archiver PDFArchiver,
	log zerolog.Logger,
) *PDFUseCase {
	return &PDFUseCase{
		loader:    documentLoader{invoiceRepo: invoiceRepo, clientRepo: clientRepo, userRepo: userRepo},
		generator: generator,
		archiver:  archiver,
		log:       log,
	}
}

// DownloadInvoicePDF genera el PDF de la factura del propietario.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe o es de otro usuario.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, ownerID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	doc, err := uc.loader.load(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("facture-%s.pdf", doc.Invoice.Number)

	// El archivo es una copia: un fallo no impide la descarga.
	if uc.archiver != nil {
		key := ownerID + "/" + filename
		if aerr := uc.archiver.Archive(ctx, key, pdfBytes); aerr != nil {
			uc.log.Warn().Err(aerr).Str("invoice_id", invoiceID).Str("key", key).Msg("pdf: no se pudo archivar")
		}
	}
	return pdfBytes, filename, nil
}
