package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// UserUseCase administración de usuarios (solo rol admin).
type UserUseCase struct {
	repo     repository.UserRepository
	identity auth.IdentityProvider
	log      zerolog.Logger
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia y el proveedor de identidad.
func NewUserUseCase(repo repository.UserRepository, identity auth.IdentityProvider, log zerolog.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, identity: identity, log: log, now: time.Now}
}

// ListUsers lista los perfiles paginados.
func (uc *UserUseCase) ListUsers(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// SetRole cambia el rol de un usuario. Un admin no puede quitarse su propio rol.
// El cambio aplica en la siguiente petición: la puerta lee el rol de la tabla users.
func (uc *UserUseCase) SetRole(ctx context.Context, actorID, userID, role string) (*dto.UserResponse, error) {
	if !entity.IsValidRole(role) {
		return nil, domain.NewValidationError(domain.FieldError{Field: "role", Message: "debe ser user o admin"})
	}
	user, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ID == actorID && role != entity.RoleAdmin {
		return nil, domain.ErrConflict
	}
	if user.Role == role {
		return auth.ToUserResponse(user), nil
	}
	user.Role = role
	user.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("actor_id", actorID).Str("user_id", userID).Str("role", role).Msg("rol actualizado")
	return auth.ToUserResponse(user), nil
}

// DeleteUser elimina el perfil (y en cascada sus datos) y luego la identidad.
// Sin perfil, cualquier token aún vigente del usuario recibe USER_NOT_FOUND en la puerta.
func (uc *UserUseCase) DeleteUser(ctx context.Context, actorID, userID string) error {
	if userID == actorID {
		return domain.ErrConflict
	}
	if _, err := uc.load(ctx, userID); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := uc.identity.DeleteIdentity(ctx, userID); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("baja de usuario: identidad no eliminada")
	}
	uc.log.Info().Str("actor_id", actorID).Str("user_id", userID).Msg("usuario eliminado")
	return nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
