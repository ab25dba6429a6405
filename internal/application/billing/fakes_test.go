package billing

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// store en memoria compartido por los repos falsos; replica el agregado de clientes del repo SQL.
type store struct {
	mu       sync.Mutex
	clients  map[string]*entity.Client
	invoices map[string]*entity.Invoice
	users    map[string]*entity.User
}

func newStore() *store {
	return &store{
		clients:  map[string]*entity.Client{},
		invoices: map[string]*entity.Invoice{},
		users:    map[string]*entity.User{},
	}
}

type fakeClients struct{ s *store }

func (f fakeClients) Create(_ context.Context, c *entity.Client) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *c
	f.s.clients[c.ID] = &cp
	return nil
}

func (f fakeClients) GetByID(_ context.Context, ownerID, id string) (*entity.Client, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.clients[id]
	if !ok || c.OwnerID != ownerID {
		return nil, nil
	}
	return f.s.withAggregates(c), nil
}

func (f fakeClients) ListByOwner(_ context.Context, ownerID string) ([]*entity.Client, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Client
	for _, c := range f.s.clients {
		if c.OwnerID == ownerID {
			out = append(out, f.s.withAggregates(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeClients) Update(_ context.Context, c *entity.Client) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.clients[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return domain.ErrNotFound
	}
	cp := *c
	f.s.clients[c.ID] = &cp
	return nil
}

func (f fakeClients) Delete(_ context.Context, ownerID, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.clients[id]
	if !ok || c.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.s.clients, id)
	for _, inv := range f.s.invoices {
		if inv.ClientID == id {
			inv.ClientID = ""
		}
	}
	return nil
}

func (s *store) withAggregates(c *entity.Client) *entity.Client {
	cp := *c
	cp.InvoicesCount = 0
	cp.TotalAmount = decimal.Zero
	for _, inv := range s.invoices {
		if inv.ClientID == c.ID && inv.OwnerID == c.OwnerID {
			cp.InvoicesCount++
			cp.TotalAmount = cp.TotalAmount.Add(inv.Amount)
		}
	}
	return &cp
}

type fakeInvoices struct{ s *store }

func (f fakeInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, other := range f.s.invoices {
		if other.OwnerID == inv.OwnerID && other.Number == inv.Number {
			return domain.ErrConflict
		}
	}
	cp := *inv
	f.s.invoices[inv.ID] = &cp
	return nil
}

func (f fakeInvoices) Update(_ context.Context, inv *entity.Invoice) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.invoices[inv.ID]
	if !ok || cur.OwnerID != inv.OwnerID {
		return domain.ErrNotFound
	}
	cp := *inv
	f.s.invoices[inv.ID] = &cp
	return nil
}

func (f fakeInvoices) GetByID(_ context.Context, ownerID, id string) (*entity.Invoice, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	inv, ok := f.s.invoices[id]
	if !ok || inv.OwnerID != ownerID {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f fakeInvoices) ListByOwner(_ context.Context, ownerID string) ([]*entity.Invoice, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range f.s.invoices {
		if inv.OwnerID == ownerID {
			cp := *inv
			cp.Items = nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (f fakeInvoices) LastNumber(_ context.Context, ownerID, prefix string) (string, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	last := ""
	for _, inv := range f.s.invoices {
		if inv.OwnerID != ownerID || !strings.HasPrefix(inv.Number, prefix) {
			continue
		}
		if len(inv.Number) > len(last) || (len(inv.Number) == len(last) && inv.Number > last) {
			last = inv.Number
		}
	}
	return last, nil
}

func (f fakeInvoices) Delete(_ context.Context, ownerID, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	inv, ok := f.s.invoices[id]
	if !ok || inv.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.s.invoices, id)
	return nil
}

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *u
	f.s.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (f fakeUsers) Update(_ context.Context, u *entity.User) error { return nil }

func (f fakeUsers) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	return nil, nil
}

func (f fakeUsers) Delete(_ context.Context, id string) error { return nil }

// fakeTx ejecuta fn sobre los mismos repos en memoria (sin rollback).
type fakeTx struct {
	s     *store
	calls int
}

func (f *fakeTx) RunBilling(_ context.Context, fn func(repository.ClientRepository, repository.InvoiceRepository) error) error {
	f.calls++
	return fn(fakeClients{f.s}, fakeInvoices{f.s})
}

type fakePDF struct{ got InvoiceDocument }

func (f *fakePDF) GenerateInvoicePDF(_ context.Context, doc InvoiceDocument) ([]byte, error) {
	f.got = doc
	return []byte("%PDF-1.3 " + doc.Invoice.Number), nil
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, key string, _ []byte) error {
	f.keys = append(f.keys, key)
	return f.err
}

type fakeUBL struct{}

func (fakeUBL) BuildInvoice(doc InvoiceDocument) ([]byte, string, error) {
	return []byte("<Invoice>" + doc.Invoice.Number + "</Invoice>"), "digest", nil
}
