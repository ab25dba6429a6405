package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/nordiqua-api/internal/domain"
	"github.com/jhoicas/nordiqua-api/internal/domain/entity"
	"github.com/jhoicas/nordiqua-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, owner_id, number, client_id, client_name, date, due_date, amount, status, notes, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Create y Update escriben varias filas: llamarlos con una tx (TxRunner) para que sean atómicos.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura y sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, owner_id, number, client_id, client_name, date, due_date, amount, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.OwnerID, inv.Number, nullIfEmpty(inv.ClientID), inv.ClientName,
		inv.Date, inv.DueDate, inv.Amount, inv.Status, inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura %s ya existe: %w", inv.Number, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente %s: %w", inv.ClientID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return r.insertItems(ctx, inv)
}

func (r *InvoiceRepo) insertItems(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, position, description, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = inv.ID
		it.Position = i + 1
		if _, err := r.q.Exec(ctx, query, it.ID, it.InvoiceID, it.Position, it.Description, it.Quantity, it.Price); err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// Update reemplaza la cabecera y las líneas de la factura.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET client_id = $3, client_name = $4, date = $5, due_date = $6, amount = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND owner_id = $2`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.OwnerID, nullIfEmpty(inv.ClientID), inv.ClientName,
		inv.Date, inv.DueDate, inv.Amount, inv.Status, inv.Notes, inv.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente %s: %w", inv.ClientID, domain.ErrNotFound)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return r.insertItems(ctx, inv)
}

// GetByID obtiene una factura completa (cabecera + líneas).
func (r *InvoiceRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = $1 AND id = $2`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	items, err := r.listItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *InvoiceRepo) listItems(ctx context.Context, invoiceID string) ([]entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, position, description, quantity, price
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	items := make([]entity.InvoiceItem, 0)
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.Description, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByOwner lista las cabeceras del propietario, más recientes primero.
func (r *InvoiceRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = $1 ORDER BY date DESC, number DESC`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var clientID *string
	err := row.Scan(
		&inv.ID, &inv.OwnerID, &inv.Number, &clientID, &inv.ClientName,
		&inv.Date, &inv.DueDate, &inv.Amount, &inv.Status, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ClientID = derefStr(clientID)
	return &inv, nil
}

// LastNumber devuelve el último número emitido con el prefijo (ej. INV-2024-).
// Ordena por longitud y luego alfabéticamente para que INV-2024-1000 quede después de INV-2024-999.
func (r *InvoiceRepo) LastNumber(ctx context.Context, ownerID, prefix string) (string, error) {
	query := `
		SELECT number FROM invoices
		WHERE owner_id = $1 AND number LIKE $2
		ORDER BY length(number) DESC, number DESC
		LIMIT 1`
	var number string
	err := r.q.QueryRow(ctx, query, ownerID, prefix+"%").Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return number, nil
}

// Delete elimina la factura; las líneas caen en cascada.
func (r *InvoiceRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
