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

var _ repository.ClientRepository = (*ClientRepo)(nil)

// clientSelect incluye los agregados derivados de las facturas del mismo propietario.
const clientSelect = `
		SELECT c.id, c.owner_id, c.name, c.contact, c.email, c.phone, c.website, c.address, c.status,
		       COALESCE(s.invoices_count, 0), COALESCE(s.total_amount, 0),
		       c.created_at, c.updated_at
		FROM clients c
		LEFT JOIN (
			SELECT client_id, COUNT(*) AS invoices_count, SUM(amount) AS total_amount
			FROM invoices WHERE owner_id = $1 AND client_id IS NOT NULL
			GROUP BY client_id
		) s ON s.client_id = c.id
		WHERE c.owner_id = $1`

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO clients (id, owner_id, name, contact, email, phone, website, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Contact, c.Email, c.Phone, c.Website, c.Address, c.Status,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente del propietario con sus agregados.
func (r *ClientRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Client, error) {
	row := r.q.QueryRow(ctx, clientSelect+` AND c.id = $2`, ownerID, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// ListByOwner lista los clientes del propietario en orden de creación.
func (r *ClientRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Client, error) {
	rows, err := r.q.Query(ctx, clientSelect+` ORDER BY c.created_at, c.id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Contact, &c.Email, &c.Phone, &c.Website, &c.Address, &c.Status,
		&c.InvoicesCount, &c.TotalAmount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update actualiza los datos editables de un cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	query := `
		UPDATE clients
		SET name = $3, contact = $4, email = $5, phone = $6, website = $7, address = $8, status = $9, updated_at = $10
		WHERE id = $1 AND owner_id = $2`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Contact, c.Email, c.Phone, c.Website, c.Address, c.Status, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el cliente. Sus facturas se conservan con client_id a NULL.
func (r *ClientRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
