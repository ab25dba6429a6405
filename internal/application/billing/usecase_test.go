package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/catalog"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerA = "11111111-1111-1111-1111-111111111111"
	ownerB = "22222222-2222-2222-2222-222222222222"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type env struct {
	s        *store
	tx       *fakeTx
	clients  *ClientUseCase
	invoices *InvoiceUseCase
}

func newEnv() *env {
	s := newStore()
	tx := &fakeTx{s: s}
	e := &env{
		s:        s,
		tx:       tx,
		clients:  NewClientUseCase(fakeClients{s}),
		invoices: NewInvoiceUseCase(tx, fakeInvoices{s}),
	}
	e.clients.now = func() time.Time { return fixedNow }
	e.invoices.now = func() time.Time { return fixedNow }
	return e
}

func clientReq(name, email string) dto.ClientRequest {
	return dto.ClientRequest{
		Name:    name,
		Contact: "Jean Dupont",
		Email:   email,
		Phone:   "01 23 45 67 89",
		Address: "123 Rue de Paris, 75001 Paris",
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fieldSet(t *testing.T, err error) map[string]bool {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba ValidationError, got %v", err)
	out := map[string]bool{}
	for _, f := range verr.Fields {
		out[f.Field] = true
	}
	return out
}

func TestClientUseCase_CreateDefaultsAndValidation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	c, err := e.clients.Create(ctx, ownerA, clientReq("  Entreprise ABC ", "Contact@ABC.fr"))
	require.NoError(t, err)
	assert.Equal(t, "Entreprise ABC", c.Name)
	assert.Equal(t, "contact@abc.fr", c.Email)
	assert.Equal(t, entity.ClientStatusActive, c.Status)
	assert.Equal(t, 0, c.InvoicesCount)

	_, err = e.clients.Create(ctx, ownerA, dto.ClientRequest{Email: "no-es-email", Status: "archived"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	fields := fieldSet(t, err)
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["address"])
	assert.True(t, fields["status"])
}

func TestClientUseCase_EmailSinDominioCompletoRechazado(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, fieldSet(t, err)["email"])
	assert.Empty(t, e.s.clients)
}

func TestClientUseCase_DeleteTwiceIsNotFound(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	c, err := e.clients.Create(ctx, ownerA, clientReq("Studio Design", "hello@studio.fr"))
	require.NoError(t, err)

	require.NoError(t, e.clients.Delete(ctx, ownerA, c.ID))
	assert.ErrorIs(t, e.clients.Delete(ctx, ownerA, c.ID), domain.ErrNotFound)
	assert.ErrorIs(t, e.clients.Delete(ctx, ownerA, "no-es-uuid"), domain.ErrNotFound)
}

func TestClientUseCase_ScopedToOwner(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	c, err := e.clients.Create(ctx, ownerA, clientReq("Tech Solutions", "info@tech.fr"))
	require.NoError(t, err)

	_, err = e.clients.GetByID(ctx, ownerB, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.clients.Update(ctx, ownerB, c.ID, clientReq("Otro nombre", "x@y.fr"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.clients.Delete(ctx, ownerB, c.ID), domain.ErrNotFound)

	list, err := e.clients.List(ctx, ownerB, catalog.ClientQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClientUseCase_ListRejectsUnknownSort(t *testing.T) {
	e := newEnv()
	_, err := e.clients.List(context.Background(), ownerA, catalog.ClientQuery{Sort: catalog.Sort{Field: "password"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvoiceUseCase_CreateComputesTotalsAndNumber(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)

	inv, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Date:     "2024-02-25",
		Items: []dto.InvoiceItemDTO{
			{Description: "Développement", Quantity: dec("2"), Price: dec("10")},
			{Description: "Support", Quantity: dec("1"), Price: dec("5")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-2024-001", inv.Number)
	assert.Equal(t, "Entreprise ABC", inv.Client)
	assert.Equal(t, "2024-02-25", inv.Date)
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
	require.NotNil(t, inv.Totals)
	assert.True(t, inv.Totals.Total.Equal(dec("25")))
	assert.True(t, inv.Totals.TVA.Equal(dec("5")))
	assert.True(t, inv.Totals.TotalTTC.Equal(dec("30")))
	assert.True(t, inv.Amount.Equal(dec("30")))
	require.Len(t, inv.Items, 2)
	assert.True(t, inv.Items[0].Total.Equal(dec("20")))

	// Sin líneas se conserva el importe enviado; el consecutivo avanza.
	second, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Date:     "2024-05-01",
		Amount:   decPtr("1800"),
		Status:   entity.InvoiceStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-002", second.Number)
	assert.True(t, second.Amount.Equal(dec("1800")))
	assert.Nil(t, second.Totals)

	// Los agregados del cliente se derivan de sus facturas.
	got, err := e.clients.GetByID(ctx, ownerA, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.InvoicesCount)
	assert.True(t, got.TotalAmount.Equal(dec("1830")))
}

func TestInvoiceUseCase_NumberRestartsEachYear(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)

	for _, date := range []string{"2023-12-30", "2023-12-31", "2024-01-02"} {
		_, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Date: date, Amount: decPtr("10")})
		require.NoError(t, err)
	}
	list, err := e.invoices.List(ctx, ownerA, catalog.InvoiceQuery{Sort: catalog.Sort{Field: "number", Direction: catalog.Asc}})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "INV-2023-001", list[0].Number)
	assert.Equal(t, "INV-2023-002", list[1].Number)
	assert.Equal(t, "INV-2024-001", list[2].Number)
}

func TestInvoiceUseCase_CreateValidation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		Date:    "25/02/2024",
		DueDate: "mañana",
		Status:  "draft",
		Items:   []dto.InvoiceItemDTO{{Description: " ", Quantity: dec("0"), Price: dec("-1")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	fields := fieldSet(t, err)
	for _, f := range []string{"clientId", "date", "dueDate", "status", "items[0].description", "items[0].quantity", "items[0].price"} {
		assert.True(t, fields[f], "falta el campo %s", f)
	}
	assert.Equal(t, 0, e.tx.calls)
}

func TestInvoiceUseCase_LineasRedondeadasAEscalaAlmacenada(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)

	inv, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Items:    []dto.InvoiceItemDTO{{Description: "Vis", Quantity: dec("100.0004"), Price: dec("0.125")}},
	})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "0.13", inv.Items[0].Price.String())
	assert.Equal(t, "100", inv.Items[0].Quantity.String())
	require.NotNil(t, inv.Totals)
	assert.Equal(t, "13", inv.Totals.Total.String())
	assert.Equal(t, "15.6", inv.Amount.String())
	assert.True(t, inv.Amount.Equal(inv.Totals.TotalTTC))

	// Lo guardado recalcula el mismo importe.
	stored := e.s.invoices[inv.ID]
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "0.13", stored.Items[0].Price.String())
	assert.True(t, stored.Amount.Equal(inv.Amount))
	assert.True(t, stored.Items[0].LineTotal().Round(2).Equal(dec("13")))
}

func TestInvoiceUseCase_CantidadQueSeRedondeaACeroRechazada(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)

	_, err = e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Items:    []dto.InvoiceItemDTO{{Description: "Vis", Quantity: dec("0.0001"), Price: dec("10")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, fieldSet(t, err)["items[0].quantity"])
	assert.Empty(t, e.s.invoices)
}

func TestInvoiceUseCase_ImportesFueraDePrecisionRechazados(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)

	_, err = e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Items: []dto.InvoiceItemDTO{
			{Description: "Enorme", Quantity: dec("1000000000"), Price: dec("1")},
			{Description: "Caro", Quantity: dec("1"), Price: dec("1000000000000")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	fields := fieldSet(t, err)
	assert.True(t, fields["items[0].quantity"])
	assert.True(t, fields["items[1].price"])

	// Cada línea cabe en su columna pero el total no.
	_, err = e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Items:    []dto.InvoiceItemDTO{{Description: "Lote", Quantity: dec("999999"), Price: dec("999999999")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, fieldSet(t, err)["amount"])

	_, err = e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("1e20")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, fieldSet(t, err)["amount"])

	assert.Empty(t, e.s.invoices)
	assert.Equal(t, 0, e.tx.calls)
}

func TestInvoiceUseCase_ClientMustBeOwned(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerB, clientReq("Studio Design", "hello@studio.fr"))
	require.NoError(t, err)

	_, err = e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("100")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, fieldSet(t, err)["clientId"])
	assert.Empty(t, e.s.invoices)
}

func TestInvoiceUseCase_UpdateKeepsNumberAndReplacesItems(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)
	created, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{
		ClientID: c.ID,
		Items:    []dto.InvoiceItemDTO{{Description: "Audit", Quantity: dec("1"), Price: dec("100")}},
	})
	require.NoError(t, err)

	updated, err := e.invoices.Update(ctx, ownerA, created.ID, dto.InvoiceRequest{
		ClientID: c.ID,
		Date:     created.Date,
		Status:   entity.InvoiceStatusPaid,
		Items: []dto.InvoiceItemDTO{
			{Description: "Audit", Quantity: dec("3"), Price: dec("0.1")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, entity.InvoiceStatusPaid, updated.Status)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "0.36", updated.Amount.String())

	_, err = e.invoices.Update(ctx, ownerB, created.ID, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceUseCase_DeleteTwiceIsNotFound(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)
	inv, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("10")})
	require.NoError(t, err)

	require.NoError(t, e.invoices.Delete(ctx, ownerA, inv.ID))
	assert.ErrorIs(t, e.invoices.Delete(ctx, ownerA, inv.ID), domain.ErrNotFound)
	_, err = e.invoices.GetByID(ctx, ownerA, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientDelete_KeepsInvoices(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, ownerA, clientReq("Tech Solutions", "info@tech.fr"))
	require.NoError(t, err)
	inv, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("3200")})
	require.NoError(t, err)

	require.NoError(t, e.clients.Delete(ctx, ownerA, c.ID))

	got, err := e.invoices.GetByID(ctx, ownerA, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ClientID)
	assert.Equal(t, "Tech Solutions", got.Client)
}

func TestPDFUseCase_DownloadAndArchive(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.s.users[ownerA] = &entity.User{ID: ownerA, Email: "owner@nordiqua.fr", Name: "Nordiqua", Role: entity.RoleUser}
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)
	inv, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("120")})
	require.NoError(t, err)

	gen := &fakePDF{}
	arch := &fakeArchiver{err: errors.New("s3 caído")}
	uc := NewPDFUseCase(fakeInvoices{e.s}, fakeClients{e.s}, fakeUsers{e.s}, gen, arch, zerolog.Nop())

	pdf, filename, err := uc.DownloadInvoicePDF(ctx, ownerA, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "facture-"+inv.Number+".pdf", filename)
	assert.Contains(t, string(pdf), inv.Number)
	assert.Equal(t, []string{ownerA + "/" + filename}, arch.keys)

	// Sin líneas el TTC guardado se descompone en HT + TVA.
	assert.True(t, gen.got.Totals.Total.Equal(dec("100")))
	assert.True(t, gen.got.Totals.TVA.Equal(dec("20")))
	require.NotNil(t, gen.got.Client)
	assert.Equal(t, "Entreprise ABC", gen.got.Client.Name)

	_, _, err = uc.DownloadInvoicePDF(ctx, ownerB, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUBLUseCase_Export(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.s.users[ownerA] = &entity.User{ID: ownerA, Email: "owner@nordiqua.fr", Name: "Nordiqua", Role: entity.RoleUser}
	c, err := e.clients.Create(ctx, ownerA, clientReq("Entreprise ABC", "contact@abc.fr"))
	require.NoError(t, err)
	inv, err := e.invoices.Create(ctx, ownerA, dto.InvoiceRequest{ClientID: c.ID, Amount: decPtr("10")})
	require.NoError(t, err)

	uc := NewUBLUseCase(fakeInvoices{e.s}, fakeClients{e.s}, fakeUsers{e.s}, fakeUBL{})
	out, err := uc.ExportUBL(ctx, ownerA, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "facture-"+inv.Number+".xml", out.Filename)
	assert.Equal(t, "digest", out.Digest)
}
