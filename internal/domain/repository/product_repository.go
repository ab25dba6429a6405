package repository

import (
	"context"

	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Product, error)
	// GetByReference devuelve (nil, nil) si la referencia está libre.
	GetByReference(ctx context.Context, ownerID, reference string) (*entity.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, ownerID, id string) error
}
