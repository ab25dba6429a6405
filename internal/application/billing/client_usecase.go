package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/catalog"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
)

// ClientUseCase casos de uso para clientes, siempre acotados al usuario propietario.
type ClientUseCase struct {
	repo repository.ClientRepository
	now  func() time.Time
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo, now: time.Now}
}

// List devuelve la vista de clientes (búsqueda, filtros y orden) del propietario.
func (uc *ClientUseCase) List(ctx context.Context, ownerID string, q catalog.ClientQuery) ([]*dto.ClientResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	clients, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view := q.Apply(clients)
	out := make([]*dto.ClientResponse, 0, len(view))
	for _, c := range view {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// GetByID devuelve un cliente del propietario o domain.ErrNotFound.
func (uc *ClientUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.ClientResponse, error) {
	c, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Create crea un cliente. El estado por defecto es active.
func (uc *ClientUseCase) Create(ctx context.Context, ownerID string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	in = normalizeClient(in)
	if err := validateClient(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	c := &entity.Client{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyClient(c, in)
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Update reemplaza los datos editables de un cliente.
func (uc *ClientUseCase) Update(ctx context.Context, ownerID, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	in = normalizeClient(in)
	if err := validateClient(in); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	applyClient(c, in)
	c.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Delete elimina el cliente. Sus facturas se conservan con el nombre facturado.
// Un segundo borrado devuelve domain.ErrNotFound.
func (uc *ClientUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, ownerID, id)
}

func (uc *ClientUseCase) load(ctx context.Context, ownerID, id string) (*entity.Client, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	c, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func normalizeClient(in dto.ClientRequest) dto.ClientRequest {
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Website = strings.TrimSpace(in.Website)
	in.Address = strings.TrimSpace(in.Address)
	if in.Status == "" {
		in.Status = entity.ClientStatusActive
	}
	return in
}

func validateClient(in dto.ClientRequest) error {
	verr := domain.NewValidationError()
	if in.Name == "" {
		verr.Add("name", "el nombre es obligatorio")
	}
	// Misma regla que el email de la cuenta.
	if !auth.ValidEmail(in.Email) {
		verr.Add("email", "email inválido")
	}
	if in.Address == "" {
		verr.Add("address", "la dirección es obligatoria")
	}
	if in.Status != entity.ClientStatusActive && in.Status != entity.ClientStatusInactive {
		verr.Add("status", "debe ser active o inactive")
	}
	return verr.OrNil()
}

func applyClient(c *entity.Client, in dto.ClientRequest) {
	c.Name = in.Name
	c.Contact = in.Contact
	c.Email = in.Email
	c.Phone = in.Phone
	c.Website = in.Website
	c.Address = in.Address
	c.Status = in.Status
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		Contact:       c.Contact,
		Email:         c.Email,
		Phone:         c.Phone,
		Website:       c.Website,
		Address:       c.Address,
		InvoicesCount: c.InvoicesCount,
		TotalAmount:   c.TotalAmount,
		Status:        c.Status,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// validID evita consultar la base con ids que no son UUID (la columna es uuid).
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
