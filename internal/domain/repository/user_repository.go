package repository

import (
	"context"

	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para la fila de perfil (tabla users).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}
