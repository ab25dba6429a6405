package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepo_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, email, name, role, created_at, updated_at FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "role", "created_at", "updated_at"}).
			AddRow("u1", "ana@example.com", "Ana", entity.RoleAdmin, now, now))

	u, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.True(t, u.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_NoExiste(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	u, err := repo.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepo_Create_EmailDuplicado(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "ana@example.com", "Ana", entity.RoleUser, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &entity.User{
		ID: "u1", Email: "ana@example.com", Name: "Ana", Role: entity.RoleUser,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestClientRepo_DeleteDosVeces(t *testing.T) {
	mock := newMock(t)
	repo := NewClientRepository(mock)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM clients WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("c1", "owner").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM clients WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("c1", "owner").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(ctx, "owner", "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "owner", "c1"), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepo_Update_OtroPropietario(t *testing.T) {
	mock := newMock(t)
	repo := NewClientRepository(mock)

	mock.ExpectExec(`UPDATE clients`).
		WithArgs("c1", "intruso", "ABC", "", "abc@example.com", "", "", "Paris", entity.ClientStatusActive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &entity.Client{
		ID: "c1", OwnerID: "intruso", Name: "ABC", Email: "abc@example.com", Address: "Paris",
		Status: entity.ClientStatusActive, UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTxRunner_CreaFacturaConLineas(t *testing.T) {
	mock := newMock(t)
	runner := NewTxRunner(mock)
	inv := &entity.Invoice{
		ID: "inv-1", OwnerID: "owner", Number: "INV-2024-001", ClientID: "c1", ClientName: "ABC",
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(30),
		Status: entity.InvoiceStatusPending,
		Items: []entity.InvoiceItem{
			{Description: "Consultation", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10)},
			{Description: "Déplacement", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(5)},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO invoices`).
		WithArgs("inv-1", "owner", "INV-2024-001", pgxmock.AnyArg(), "ABC", inv.Date, pgxmock.AnyArg(),
			inv.Amount, entity.InvoiceStatusPending, "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO invoice_items`).
		WithArgs(pgxmock.AnyArg(), "inv-1", 1, "Consultation", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO invoice_items`).
		WithArgs(pgxmock.AnyArg(), "inv-1", 2, "Déplacement", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := runner.RunBilling(context.Background(), func(_ repository.ClientRepository, invoices repository.InvoiceRepository) error {
		return invoices.Create(context.Background(), inv)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Items[1].Position)
	assert.Equal(t, "inv-1", inv.Items[0].InvoiceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_RollbackSiFalla(t *testing.T) {
	mock := newMock(t)
	runner := NewTxRunner(mock)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := runner.RunBilling(context.Background(), func(repository.ClientRepository, repository.InvoiceRepository) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_LastNumber(t *testing.T) {
	mock := newMock(t)
	repo := NewInvoiceRepository(mock)

	mock.ExpectQuery(`SELECT number FROM invoices`).
		WithArgs("owner", "INV-2024-%").
		WillReturnRows(pgxmock.NewRows([]string{"number"}).AddRow("INV-2024-007"))
	mock.ExpectQuery(`SELECT number FROM invoices`).
		WithArgs("owner", "INV-2025-%").
		WillReturnError(pgx.ErrNoRows)

	last, err := repo.LastNumber(context.Background(), "owner", "INV-2024-")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-007", last)

	last, err = repo.LastNumber(context.Background(), "owner", "INV-2025-")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestInvoiceRepo_Create_ClienteInexistente(t *testing.T) {
	mock := newMock(t)
	repo := NewInvoiceRepository(mock)

	mock.ExpectExec(`INSERT INTO invoices`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), &entity.Invoice{OwnerID: "owner", ClientID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_Delete_NoExiste(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec(`DELETE FROM products`).
		WithArgs("p1", "owner").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "owner", "p1"), domain.ErrNotFound)
}

func TestIdentityProvider_SignIn(t *testing.T) {
	mock := newMock(t)
	provider := NewIdentityProvider(mock)
	provider.cost = bcrypt.MinCost

	mock.ExpectExec(`INSERT INTO auth_identities`).
		WithArgs(pgxmock.AnyArg(), "ana@example.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := provider.SignUp(context.Background(), " Ana@Example.com ", "Secret1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := string(hash)

	mock.ExpectQuery(`SELECT id, password_hash FROM auth_identities`).
		WithArgs("ana@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "password_hash"}).AddRow(id, stored))
	got, err := provider.SignIn(context.Background(), "ana@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	mock.ExpectQuery(`SELECT id, password_hash FROM auth_identities`).
		WithArgs("ana@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "password_hash"}).AddRow(id, stored))
	_, err = provider.SignIn(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	mock.ExpectQuery(`SELECT id, password_hash FROM auth_identities`).
		WithArgs("nadie@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = provider.SignIn(context.Background(), "nadie@example.com", "Secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
