package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"lawnquote/internal/types"
)

const quoteColumns = `id, organization_id, client_id, assessment_id, quote_number, status,
	line_items, base_price, adjustments, total_multiplier, final_price, labor_hours,
	notes, sent_at, created_at, updated_at`

// QuoteRepository persists quotes. Line items and applied adjustments are
// stored as JSONB snapshots so a quote stays explainable after the catalog or
// assessment changes.
type QuoteRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewQuoteRepository creates a QuoteRepository backed by the given database
// connection.
func NewQuoteRepository(db DBTX, logger *slog.Logger) *QuoteRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteRepository{db: db, logger: logger}
}

// Create inserts a quote with its line item and adjustment snapshots.
func (r *QuoteRepository) Create(ctx context.Context, q *types.Quote) error {
	items, err := json.Marshal(q.LineItems)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode quote line items", err)
	}
	adjs, err := json.Marshal(q.Adjustments)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode quote adjustments", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO quotes (id, organization_id, client_id, assessment_id, quote_number, status,
			line_items, base_price, adjustments, total_multiplier, final_price, labor_hours,
			notes, sent_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		q.ID, q.OrganizationID, q.ClientID, nullable(q.AssessmentID), q.QuoteNumber, q.Status,
		items, q.BasePrice, adjs, q.TotalMultiplier, q.FinalPrice, q.LaborHours,
		q.Notes, q.SentAt, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create quote", err)
	}
	return nil
}

// GetByID fetches one quote within an organization.
func (r *QuoteRepository) GetByID(ctx context.Context, id, orgID string) (*types.Quote, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundQuote, "quote not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch quote", err)
	}
	return q, nil
}

// List returns quotes for an organization, newest first, with a limit/offset
// window.
func (r *QuoteRepository) List(ctx context.Context, orgID string, limit, offset int) ([]types.Quote, error) {
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
		`SELECT `+quoteColumns+` FROM quotes
		 WHERE organization_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		orgID, limit, offset,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list quotes", err)
	}
	defer rows.Close()

	var out []types.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan quote", err)
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read quotes", err)
	}
	return out, nil
}

// UpdateStatus transitions a quote's status and stamps sent_at on the first
// move to "sent".
func (r *QuoteRepository) UpdateStatus(ctx context.Context, id, orgID string, status types.QuoteStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE quotes
		 SET status = $1,
		     sent_at = CASE WHEN $1 = 'sent' AND sent_at IS NULL THEN NOW() ELSE sent_at END,
		     updated_at = NOW()
		 WHERE id = $2 AND organization_id = $3`,
		status, id, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update quote status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundQuote, "quote not found", nil)
	}
	return nil
}

// Delete removes a quote.
func (r *QuoteRepository) Delete(ctx context.Context, id, orgID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM quotes WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete quote", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundQuote, "quote not found", nil)
	}
	return nil
}

// CountCreatedSince counts quotes created at or after the given instant, used
// to enforce monthly plan limits.
func (r *QuoteRepository) CountCreatedSince(ctx context.Context, orgID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotes WHERE organization_id = $1 AND created_at >= $2`,
		orgID, since,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count quotes", err)
	}
	return count, nil
}

// NextQuoteNumber produces a sequential per-organization quote number like
// "Q-2026-0042" using a count of existing quotes for the current year.
func (r *QuoteRepository) NextQuoteNumber(ctx context.Context, orgID string, now time.Time) (string, error) {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	n, err := r.CountCreatedSince(ctx, orgID, yearStart)
	if err != nil {
		return "", err
	}
	return formatQuoteNumber(now.Year(), n+1), nil
}

func formatQuoteNumber(year, seq int) string {
	return fmt.Sprintf("Q-%d-%04d", year, seq)
}

func scanQuote(row pgx.Row) (*types.Quote, error) {
	var (
		q            types.Quote
		assessmentID *string
		itemsRaw     []byte
		adjsRaw      []byte
	)
	err := row.Scan(&q.ID, &q.OrganizationID, &q.ClientID, &assessmentID,
		&q.QuoteNumber, &q.Status,
		&itemsRaw, &q.BasePrice, &adjsRaw, &q.TotalMultiplier, &q.FinalPrice, &q.LaborHours,
		&q.Notes, &q.SentAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assessmentID != nil {
		q.AssessmentID = *assessmentID
	}
	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &q.LineItems); err != nil {
			return nil, err
		}
	}
	if len(adjsRaw) > 0 {
		if err := json.Unmarshal(adjsRaw, &q.Adjustments); err != nil {
			return nil, err
		}
	}
	return &q, nil
}
