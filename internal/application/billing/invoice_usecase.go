package billing

import (
	"context"
	"errors"
	"fmt"
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

// DateLayout formato de fechas de factura en la API.
const DateLayout = "2006-01-02"

// maxNumberAttempts reintentos cuando otra petición tomó el mismo número (UNIQUE owner_id, number).
const maxNumberAttempts = 3

// InvoiceUseCase casos de uso para facturas y sus líneas.
type InvoiceUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner TxRunner, invoiceRepo repository.InvoiceRepository) *InvoiceUseCase {
	return &InvoiceUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo, now: time.Now}
}

// invoiceInput es la petición ya validada y convertida a tipos de dominio.
type invoiceInput struct {
	clientID string
	date     time.Time
	dueDate  *time.Time
	amount   decimal.Decimal
	status   string
	notes    string
	items    []entity.InvoiceItem
}

// List devuelve las cabeceras del propietario (sin líneas) con búsqueda, estado y orden.
func (uc *InvoiceUseCase) List(ctx context.Context, ownerID string, q catalog.InvoiceQuery) ([]*dto.InvoiceResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	invoices, err := uc.invoiceRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	view := q.Apply(invoices)
	out := make([]*dto.InvoiceResponse, 0, len(view))
	for _, inv := range view {
		out = append(out, toInvoiceResponse(inv, false))
	}
	return out, nil
}

// GetByID devuelve la factura con líneas y totales.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.InvoiceResponse, error) {
	inv, err := loadInvoice(ctx, uc.invoiceRepo, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// Create crea la factura y sus líneas en una sola transacción y le asigna el número INV-YYYY-NNN.
func (uc *InvoiceUseCase) Create(ctx context.Context, ownerID string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	now := uc.now().UTC()
	input, err := parseInvoiceRequest(in, now)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	for attempt := 1; ; attempt++ {
		inv = &entity.Invoice{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = uc.txRunner.RunBilling(ctx, func(clientRepo repository.ClientRepository, invoiceRepo repository.InvoiceRepository) error {
			// ── 1. Cliente del propietario ──
			client, err := ownedClient(ctx, clientRepo, ownerID, input.clientID)
			if err != nil {
				return err
			}
			applyInvoice(inv, input, client)

			// ── 2. Número consecutivo del año ──
			year := inv.Date.Year()
			last, err := invoiceRepo.LastNumber(ctx, ownerID, dombilling.NumberPrefix(year))
			if err != nil {
				return err
			}
			inv.Number = dombilling.NextNumber(year, last)

			// ── 3. Cabecera + líneas ──
			return invoiceRepo.Create(ctx, inv)
		})
		if errors.Is(err, domain.ErrConflict) && attempt < maxNumberAttempts {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// Update reemplaza cabecera y líneas. El número no cambia.
func (uc *InvoiceUseCase) Update(ctx context.Context, ownerID, id string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	now := uc.now().UTC()
	input, err := parseInvoiceRequest(in, now)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	err = uc.txRunner.RunBilling(ctx, func(clientRepo repository.ClientRepository, invoiceRepo repository.InvoiceRepository) error {
		current, err := invoiceRepo.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		client, err := ownedClient(ctx, clientRepo, ownerID, input.clientID)
		if err != nil {
			return err
		}
		applyInvoice(current, input, client)
		current.UpdatedAt = now
		inv = current
		return invoiceRepo.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, true), nil
}

// Delete elimina la factura y sus líneas. Un segundo borrado devuelve domain.ErrNotFound.
func (uc *InvoiceUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	return uc.invoiceRepo.Delete(ctx, ownerID, id)
}

func loadInvoice(ctx context.Context, repo repository.InvoiceRepository, ownerID, id string) (*entity.Invoice, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	inv, err := repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// ownedClient exige que clientID sea un cliente del propietario; si no, es un error del campo clientId.
func ownedClient(ctx context.Context, repo repository.ClientRepository, ownerID, clientID string) (*entity.Client, error) {
	client, err := repo.GetByID(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: "clientId", Message: "cliente no encontrado"})
	}
	return client, nil
}

func parseInvoiceRequest(in dto.InvoiceRequest, now time.Time) (invoiceInput, error) {
	verr := domain.NewValidationError()
	out := invoiceInput{
		clientID: strings.TrimSpace(in.ClientID),
		status:   strings.TrimSpace(in.Status),
		notes:    strings.TrimSpace(in.Notes),
	}

	if out.clientID == "" {
		verr.Add("clientId", "el cliente es obligatorio")
	} else if !validID(out.clientID) {
		verr.Add("clientId", "cliente no encontrado")
	}

	out.date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.Date != "" {
		d, err := time.Parse(DateLayout, in.Date)
		if err != nil {
			verr.Add("date", "fecha inválida, formato YYYY-MM-DD")
		} else {
			out.date = d
		}
	}
	if in.DueDate != "" {
		d, err := time.Parse(DateLayout, in.DueDate)
		switch {
		case err != nil:
			verr.Add("dueDate", "fecha inválida, formato YYYY-MM-DD")
		case d.Before(out.date):
			verr.Add("dueDate", "no puede ser anterior a la fecha de la factura")
		default:
			out.dueDate = &d
		}
	}

	if out.status == "" {
		out.status = entity.InvoiceStatusPending
	} else if !entity.IsValidInvoiceStatus(out.status) {
		verr.Add("status", "debe ser pending, paid u overdue")
	}

	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			verr.Add(field+".description", "la descripción es obligatoria")
		}
		// Se redondea a la escala de las columnas para que lo calculado sea lo almacenado.
		qty := it.Quantity.Round(dombilling.QuantityScale)
		price := it.Price.Round(dombilling.AmountScale)
		switch {
		case !qty.IsPositive():
			verr.Add(field+".quantity", "la cantidad debe ser mayor que cero")
		case qty.GreaterThan(dombilling.MaxQuantity):
			verr.Add(field+".quantity", "cantidad demasiado grande")
		}
		switch {
		case price.IsNegative():
			verr.Add(field+".price", "el precio no puede ser negativo")
		case price.GreaterThan(dombilling.MaxAmount):
			verr.Add(field+".price", "precio demasiado grande")
		}
		out.items = append(out.items, entity.InvoiceItem{
			Position:    i + 1,
			Description: desc,
			Quantity:    qty,
			Price:       price,
		})
	}

	// Con líneas el importe es el total TTC calculado; sin líneas se conserva el enviado.
	if len(out.items) > 0 {
		out.amount = dombilling.ComputeTotals(out.items).TotalTTC
		if out.amount.GreaterThan(dombilling.MaxAmount) {
			verr.Add("amount", "el total de la factura es demasiado grande")
		}
	} else {
		switch {
		case in.Amount == nil:
			verr.Add("amount", "importe obligatorio si la factura no tiene líneas")
		case in.Amount.IsNegative():
			verr.Add("amount", "el importe no puede ser negativo")
		case in.Amount.Round(dombilling.AmountScale).GreaterThan(dombilling.MaxAmount):
			verr.Add("amount", "importe demasiado grande")
		default:
			out.amount = in.Amount.Round(dombilling.AmountScale)
		}
	}

	if err := verr.OrNil(); err != nil {
		return invoiceInput{}, err
	}
	return out, nil
}

func applyInvoice(inv *entity.Invoice, in invoiceInput, client *entity.Client) {
	inv.ClientID = client.ID
	inv.ClientName = client.Name
	inv.Date = in.date
	inv.DueDate = in.dueDate
	inv.Amount = in.amount
	inv.Status = in.status
	inv.Notes = in.notes
	inv.Items = make([]entity.InvoiceItem, len(in.items))
	for i, it := range in.items {
		it.ID = uuid.New().String()
		it.InvoiceID = inv.ID
		inv.Items[i] = it
	}
}

func toInvoiceResponse(inv *entity.Invoice, detail bool) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		ClientID:  inv.ClientID,
		Client:    inv.ClientName,
		Date:      inv.Date.Format(DateLayout),
		Amount:    inv.Amount,
		Status:    inv.Status,
		Notes:     inv.Notes,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
	if inv.DueDate != nil {
		out.DueDate = inv.DueDate.Format(DateLayout)
	}
	if !detail {
		return out
	}
	out.Items = make([]dto.InvoiceItemDTO, 0, len(inv.Items))
	for _, it := range inv.Items {
		out.Items = append(out.Items, dto.InvoiceItemDTO{
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Total:       it.LineTotal().Round(2),
		})
	}
	if len(inv.Items) > 0 {
		t := dombilling.ComputeTotals(inv.Items)
		out.Totals = &dto.TotalsDTO{Total: t.Total, TVA: t.TVA, TotalTTC: t.TotalTTC}
	}
	return out
}
