package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
)

// UBLUseCase exporta una factura como documento UBL 2.1.
type UBLUseCase struct {
	loader  documentLoader
	builder UBLBuilder
}

// NewUBLUseCase construye el caso de uso.
func NewUBLUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	builder UBLBuilder,
) *UBLUseCase {
	return &UBLUseCase{
		loader:  documentLoader{invoiceRepo: invoiceRepo, clientRepo: clientRepo, userRepo: userRepo},
		builder: builder,
	}
}

// ExportUBL devuelve el XML y la huella SHA-256 de su forma canónica.
func (uc *UBLUseCase) ExportUBL(ctx context.Context, ownerID, invoiceID string) (*dto.UBLExport, error) {
	doc, err := uc.loader.load(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	xml, digest, err := uc.builder.BuildInvoice(doc)
	if err != nil {
		return nil, fmt.Errorf("ubl: construcción fallida: %w", err)
	}
	return &dto.UBLExport{
		Filename: fmt.Sprintf("facture-%s.xml", doc.Invoice.Number),
		XML:      xml,
		Digest:   digest,
	}, nil
}
