package repository

import (
	"context"

	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// Create persiste la cabecera y las líneas.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update reemplaza la cabecera y todas las líneas.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// GetByID devuelve la factura con sus líneas, o (nil, nil) si no existe para ese propietario.
	GetByID(ctx context.Context, ownerID, id string) (*entity.Invoice, error)
	// ListByOwner devuelve las cabeceras (sin líneas) ordenadas por fecha descendente.
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Invoice, error)
	// LastNumber devuelve el mayor número con el prefijo dado, o "" si no hay ninguno.
	LastNumber(ctx context.Context, ownerID, prefix string) (string, error)
	Delete(ctx context.Context, ownerID, id string) error
}
