package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"lawnquote/internal/types"
)

const clientColumns = `id, organization_id, name, email, phone, property_address, created_at, updated_at`

// ClientRepository persists contractor customers.
type ClientRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewClientRepository creates a ClientRepository backed by the given database
// connection.
func NewClientRepository(db DBTX, logger *slog.Logger) *ClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientRepository{db: db, logger: logger}
}

// Create inserts a client.
func (r *ClientRepository) Create(ctx context.Context, c *types.Client) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO clients (id, organization_id, name, email, phone, property_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.OrganizationID, c.Name, c.Email, c.Phone, c.PropertyAddress,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create client", err)
	}
	return nil
}

// GetByID fetches one client within an organization.
func (r *ClientRepository) GetByID(ctx context.Context, id, orgID string) (*types.Client, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundClient, "client not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch client", err)
	}
	return c, nil
}

// List returns clients for an organization, newest first, with a limit/offset
// window.
func (r *ClientRepository) List(ctx context.Context, orgID string, limit, offset int) ([]types.Client, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+clientColumns+` FROM clients
		 WHERE organization_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		orgID, limit, offset,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list clients", err)
	}
	defer rows.Close()

	var out []types.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan client", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read clients", err)
	}
	return out, nil
}

// Update rewrites a client's contact fields.
func (r *ClientRepository) Update(ctx context.Context, c *types.Client) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients
		 SET name = $1, email = $2, phone = $3, property_address = $4, updated_at = NOW()
		 WHERE id = $5 AND organization_id = $6`,
		c.Name, c.Email, c.Phone, c.PropertyAddress, c.ID, c.OrganizationID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update client", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundClient, "client not found", nil)
	}
	return nil
}

// Delete removes a client.
func (r *ClientRepository) Delete(ctx context.Context, id, orgID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundClient, "client not found", nil)
	}
	return nil
}

// CountByOrg returns the number of clients for plan limit enforcement.
func (r *ClientRepository) CountByOrg(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE organization_id = $1`,
		orgID,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count clients", err)
	}
	return count, nil
}

func scanClient(row pgx.Row) (*types.Client, error) {
	var c types.Client
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.Phone,
		&c.PropertyAddress, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
