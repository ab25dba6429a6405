package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
	"github.com/jhoicas/nordiqua-api/pkg/jwt"
	"github.com/rs/zerolog"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthUseCase casos de uso de autenticación: registro, login y perfil.
type AuthUseCase struct {
	identity IdentityProvider
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(identity IdentityProvider, userRepo repository.UserRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	if jwtCfg.TTL <= 0 {
		jwtCfg.TTL = jwt.DefaultTTL
	}
	return &AuthUseCase{identity: identity, userRepo: userRepo, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// Register crea la identidad en el proveedor y luego la fila de perfil {id, email, name, role:user}.
// Si la fila de perfil no se puede crear, la identidad se elimina para no dejarla huérfana.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	verr := domain.NewValidationError()
	validateEmail(verr, email)
	validatePassword(verr, in.Password)
	validateName(verr, name)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	id, err := uc.identity.SignUp(ctx, email, in.Password)
	if err != nil {
		return nil, fmt.Errorf("crear identidad: %w", err)
	}

	now := uc.now().UTC()
	user := &entity.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      entity.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Solo se compensa una identidad recién creada: si ya tiene perfil es de otra cuenta.
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, fmt.Errorf("crear perfil: %w", err)
		}
		if existing, gerr := uc.userRepo.GetByID(ctx, id); gerr != nil || existing != nil {
			uc.log.Warn().Err(err).Str("user_id", id).Msg("registro: la identidad ya tiene perfil, no se elimina")
			return nil, fmt.Errorf("crear perfil: %w", err)
		}
		if derr := uc.identity.DeleteIdentity(ctx, id); derr != nil {
			uc.log.Error().Err(derr).Str("user_id", id).Msg("registro: no se pudo eliminar la identidad huérfana")
		} else {
			uc.log.Warn().Err(err).Str("user_id", id).Msg("registro: perfil no creado, identidad revertida")
		}
		return nil, fmt.Errorf("crear perfil: %w", err)
	}

	return uc.issue(user)
}

// Login delega la verificación de credenciales al proveedor, lee el perfil y emite un token de 24 h.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	verr := domain.NewValidationError()
	validateEmail(verr, email)
	if in.Password == "" {
		verr.Add("password", "la contraseña es obligatoria")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	id, err := uc.identity.SignIn(ctx, email, in.Password)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.issue(user)
}

// GetCurrentUser devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// UpdateProfile modifica nombre y/o email del perfil. Los campos nil no cambian.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	verr := domain.NewValidationError()
	var name, email string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		validateName(verr, name)
	}
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		validateEmail(verr, email)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Name != nil {
		user.Name = name
	}
	if in.Email != nil {
		user.Email = email
	}
	user.UpdatedAt = uc.now().UTC()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, uc.jwtCfg.Issuer, uc.jwtCfg.TTL)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User:  *ToUserResponse(user),
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToUserResponse convierte la entidad en su DTO de salida.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
