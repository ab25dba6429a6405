package billing

import (
	"context"

	dombilling "github.com/jhoicas/nordiqua-api/internal/domain/billing"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de clientes y facturas.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		clientRepo repository.ClientRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// InvoiceDocument agrupa todo lo necesario para representar una factura fuera de la API
// (PDF, UBL). Client puede ser nil si el cliente fue eliminado.
type InvoiceDocument struct {
	Invoice *entity.Invoice
	Client  *entity.Client
	Issuer  *entity.User
	Totals  dombilling.Totals
}

// InvoicePDFGenerator genera la representación PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// PDFArchiver guarda una copia de cada PDF descargado (S3).
type PDFArchiver interface {
	Archive(ctx context.Context, key string, data []byte) error
}

// UBLBuilder construye el XML UBL 2.1 de una factura y la huella de su forma canónica.
type UBLBuilder interface {
	BuildInvoice(doc InvoiceDocument) (xml []byte, digest string, err error)
}
