package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var _ auth.IdentityProvider = (*IdentityProvider)(nil)

// IdentityProvider proveedor de identidades local (AUTH_PROVIDER=local): email + hash bcrypt
// en la tabla auth_identities, separada de la fila de perfil.
type IdentityProvider struct {
	q    Querier
	cost int
}

// NewIdentityProvider construye el proveedor local.
func NewIdentityProvider(q Querier) *IdentityProvider {
	return &IdentityProvider{q: q, cost: bcrypt.DefaultCost}
}

// SignUp crea la identidad y devuelve su ID.
func (p *IdentityProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	id := uuid.New().String()
	query := `INSERT INTO auth_identities (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err = p.q.Exec(ctx, query, id, strings.ToLower(strings.TrimSpace(email)), string(hash), time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrEmailAlreadyExists
		}
		return "", fmt.Errorf("insert identity: %w", err)
	}
	return id, nil
}

// SignIn verifica las credenciales y devuelve el ID de la identidad.
// Email desconocido y contraseña incorrecta devuelven el mismo error.
func (p *IdentityProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	var id, hash string
	query := `SELECT id, password_hash FROM auth_identities WHERE lower(email) = lower($1)`
	err := p.q.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("get identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return id, nil
}

// DeleteIdentity elimina la identidad; no falla si ya no existe.
func (p *IdentityProvider) DeleteIdentity(ctx context.Context, id string) error {
	if _, err := p.q.Exec(ctx, `DELETE FROM auth_identities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}
