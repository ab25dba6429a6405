package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/pkg/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeIdentity struct {
	mu        sync.Mutex
	passwords map[string]string // email -> password
	ids       map[string]string // email -> id
	deleted   []string
	// reuseIDs imita a GoTrue con emails sin confirmar: SignUp devuelve el id existente.
	reuseIDs bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{passwords: map[string]string{}, ids: map[string]string{}}
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.ids[email]; ok {
		if f.reuseIDs {
			return id, nil
		}
		return "", domain.ErrEmailAlreadyExists
	}
	id := uuid.New().String()
	f.ids[email] = id
	f.passwords[email] = password
	return id, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.passwords[email] != password || password == "" {
		return "", domain.ErrInvalidCredentials
	}
	return f.ids[email], nil
}

func (f *fakeIdentity) DeleteIdentity(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, v := range f.ids {
		if v == id {
			delete(f.ids, email)
			delete(f.passwords, email)
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	createErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*entity.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[u.ID]; ok {
		return domain.ErrEmailAlreadyExists
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) List(context.Context, int, int) ([]*entity.User, error) { return nil, nil }

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func newUseCase() (*auth.AuthUseCase, *fakeIdentity, *fakeUsers) {
	identity := newFakeIdentity()
	users := newFakeUsers()
	uc := auth.NewAuthUseCase(identity, users, auth.JWTConfig{Secret: testSecret, Issuer: "nordiqua"}, zerolog.Nop())
	return uc, identity, users
}

func TestRegisterLogin_RoundTrip(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	reg, err := uc.Register(ctx, dto.RegisterRequest{Email: "Ana@Example.com", Password: "Secret1", Name: "  Ana Lopez "})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, entity.RoleUser, reg.User.Role)

	login, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", login.User.Email)
	assert.Equal(t, "Ana Lopez", login.User.Name)
	assert.Equal(t, reg.User.ID, login.User.ID)

	claims, err := jwt.Parse(testSecret, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestRegister_Validacion(t *testing.T) {
	uc, _, _ := newUseCase()

	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "no-es-email", Password: "secret", Name: "A"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.Equal(t, map[string]bool{"email": true, "password": true, "name": true}, fields)
}

func TestRegister_PasswordSinMayuscula(t *testing.T) {
	uc, _, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	in := dto.RegisterRequest{Email: "ana@example.com", Password: "Secret1", Name: "Ana"}

	_, err := uc.Register(ctx, in)
	require.NoError(t, err)
	_, err = uc.Register(ctx, in)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_CompensaSiFallaElPerfil(t *testing.T) {
	uc, identity, users := newUseCase()
	users.createErr = errors.New("row store caído")

	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "Secret1", Name: "Ana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row store caído")
	require.Len(t, identity.deleted, 1)

	_, err = identity.SignIn(context.Background(), "ana@example.com", "Secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "la identidad huérfana fue eliminada")
}

func TestRegister_IdentidadExistenteNoSeElimina(t *testing.T) {
	uc, identity, users := newUseCase()
	ctx := context.Background()
	in := dto.RegisterRequest{Email: "ana@example.com", Password: "Secret1", Name: "Ana"}

	reg, err := uc.Register(ctx, in)
	require.NoError(t, err)

	identity.reuseIDs = true
	_, err = uc.Register(ctx, dto.RegisterRequest{Email: in.Email, Password: "Intrus0", Name: "Intruso"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	assert.Empty(t, identity.deleted)

	login, err := uc.Login(ctx, dto.LoginRequest{Email: in.Email, Password: in.Password})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Equal(t, "Ana", users.users[reg.User.ID].Name)
}

func TestRegister_PerfilYaExistenteConOtroError(t *testing.T) {
	uc, identity, users := newUseCase()
	ctx := context.Background()
	in := dto.RegisterRequest{Email: "ana@example.com", Password: "Secret1", Name: "Ana"}

	_, err := uc.Register(ctx, in)
	require.NoError(t, err)

	identity.reuseIDs = true
	users.createErr = errors.New("timeout")
	_, err = uc.Register(ctx, in)
	require.Error(t, err)
	assert.Empty(t, identity.deleted, "la identidad con perfil no se compensa")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	_, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "Secret1", Name: "Ana"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "Otra123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_SinPerfil(t *testing.T) {
	uc, identity, _ := newUseCase()
	_, err := identity.SignUp(context.Background(), "ana@example.com", "Secret1")
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "Secret1"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	reg, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "Secret1", Name: "Ana"})
	require.NoError(t, err)

	name := "Ana María"
	out, err := uc.UpdateProfile(ctx, reg.User.ID, dto.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", out.Name)
	assert.Equal(t, "ana@example.com", out.Email)

	bad := "x"
	_, err = uc.UpdateProfile(ctx, reg.User.ID, dto.UpdateProfileRequest{Name: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	me, err := uc.GetCurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", me.Name)

	_, err = uc.GetCurrentUser(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
