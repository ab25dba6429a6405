package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/nordiqua-api/internal/application/dto"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	dombilling "github.com/jhoicas/nordiqua-api/internal/domain/billing"
	"github.com/jhoicas/nordiqua-api/internal/domain/catalog"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const defaultUnit = "unité"

var (
	defaultTax = decimal.NewFromInt(20)
	maxTax     = decimal.NewFromInt(100)
)

// ProductUseCase casos de uso CRUD para el catálogo de productos y servicios del usuario.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// List devuelve la vista del catálogo (búsqueda, tipo, activo y orden).
func (uc *ProductUseCase) List(ctx context.Context, ownerID string, q catalog.ProductQuery) ([]*dto.ProductResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	products, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view := q.Apply(products)
	out := make([]*dto.ProductResponse, 0, len(view))
	for _, p := range view {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// Create crea un producto. Tax por defecto 20, unidad por defecto "unité", activo por defecto.
// La referencia, si se informa, es única por usuario.
func (uc *ProductUseCase) Create(ctx context.Context, ownerID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	now := uc.now().UTC()
	p := &entity.Product{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(dombilling.AmountScale),
		Unit:        strings.TrimSpace(in.Unit),
		Tax:         defaultTax,
		Reference:   strings.TrimSpace(in.Reference),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Type == "" {
		p.Type = entity.ProductTypeProduct
	}
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	if in.Tax != nil {
		p.Tax = *in.Tax
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := uc.ensureReferenceFree(ctx, p); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetByID obtiene un producto del usuario.
func (uc *ProductUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Update aplica una actualización parcial: solo cambian los campos informados.
func (uc *ProductUseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		p.Type = strings.TrimSpace(*in.Type)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = in.Price.Round(dombilling.AmountScale)
	}
	if in.Unit != nil {
		p.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Tax != nil {
		p.Tax = *in.Tax
	}
	if in.Reference != nil {
		p.Reference = strings.TrimSpace(*in.Reference)
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if in.Reference != nil {
		if err := uc.ensureReferenceFree(ctx, p); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Delete elimina un producto. Un segundo borrado devuelve domain.ErrNotFound.
func (uc *ProductUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, ownerID, id)
}

func (uc *ProductUseCase) load(ctx context.Context, ownerID, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *ProductUseCase) ensureReferenceFree(ctx context.Context, p *entity.Product) error {
	if p.Reference == "" {
		return nil
	}
	existing, err := uc.repo.GetByReference(ctx, p.OwnerID, p.Reference)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != p.ID {
		return domain.ErrConflict
	}
	return nil
}

func validateProduct(p *entity.Product) error {
	verr := domain.NewValidationError()
	if len([]rune(p.Name)) < 2 {
		verr.Add("name", "el nombre debe tener al menos 2 caracteres")
	}
	if p.Type != entity.ProductTypeProduct && p.Type != entity.ProductTypeService {
		verr.Add("type", "debe ser product o service")
	}
	switch {
	case p.Price.IsNegative():
		verr.Add("price", "el precio no puede ser negativo")
	case p.Price.GreaterThan(dombilling.MaxAmount):
		verr.Add("price", "precio demasiado grande")
	}
	if p.Tax.IsNegative() || p.Tax.GreaterThan(maxTax) {
		verr.Add("tax", "debe estar entre 0 y 100")
	}
	return verr.OrNil()
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		Price:       p.Price,
		Unit:        p.Unit,
		Tax:         p.Tax,
		Reference:   p.Reference,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
