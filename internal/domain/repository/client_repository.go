package repository

import (
	"context"

	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
// Todas las operaciones están acotadas al usuario propietario.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	// GetByID devuelve (nil, nil) si no existe o pertenece a otro usuario.
	GetByID(ctx context.Context, ownerID, id string) (*entity.Client, error)
	// ListByOwner incluye InvoicesCount y TotalAmount derivados de las facturas.
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Client, error)
	// Update y Delete devuelven domain.ErrNotFound si no afectan ninguna fila.
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, ownerID, id string) error
}
