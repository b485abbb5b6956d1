package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"lawnquote/internal/types"
)

// ItemRepository persists the per-organization service catalog.
type ItemRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewItemRepository creates an ItemRepository backed by the given database
// connection.
func NewItemRepository(db DBTX, logger *slog.Logger) *ItemRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemRepository{db: db, logger: logger}
}

// Create inserts a catalog item.
func (r *ItemRepository) Create(ctx context.Context, item *types.LineItem) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO line_items (id, organization_id, name, unit, cost, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.OrganizationID, item.Name, item.Unit, item.Cost,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create line item", err)
	}
	return nil
}

// GetByID fetches one catalog item within an organization.
func (r *ItemRepository) GetByID(ctx context.Context, id, orgID string) (*types.LineItem, error) {
	var item types.LineItem
	err := r.db.QueryRow(ctx,
		`SELECT id, organization_id, name, unit, cost, created_at, updated_at
		 FROM line_items
		 WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	).Scan(&item.ID, &item.OrganizationID, &item.Name, &item.Unit, &item.Cost,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundItem, "line item not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch line item", err)
	}
	return &item, nil
}

// ListByOrg returns the full catalog for an organization in insertion order.
// Catalog order matters: suggestion matching picks the first item whose name
// matches a rule keyword.
func (r *ItemRepository) ListByOrg(ctx context.Context, orgID string) ([]types.LineItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, organization_id, name, unit, cost, created_at, updated_at
		 FROM line_items
		 WHERE organization_id = $1
		 ORDER BY created_at ASC`,
		orgID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list line items", err)
	}
	defer rows.Close()

	var out []types.LineItem
	for rows.Next() {
		var item types.LineItem
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.Name, &item.Unit,
			&item.Cost, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan line item", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read line items", err)
	}
	return out, nil
}

// Update rewrites a catalog item's name, unit, and cost.
func (r *ItemRepository) Update(ctx context.Context, item *types.LineItem) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE line_items
		 SET name = $1, unit = $2, cost = $3, updated_at = NOW()
		 WHERE id = $4 AND organization_id = $5`,
		item.Name, item.Unit, item.Cost, item.ID, item.OrganizationID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update line item", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundItem, "line item not found", nil)
	}
	return nil
}

// Delete removes a catalog item.
func (r *ItemRepository) Delete(ctx context.Context, id, orgID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM line_items WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete line item", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundItem, "line item not found", nil)
	}
	return nil
}

// CountByOrg returns the catalog size for plan limit enforcement.
func (r *ItemRepository) CountByOrg(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM line_items WHERE organization_id = $1`,
		orgID,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count line items", err)
	}
	return count, nil
}
