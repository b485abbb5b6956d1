package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"lawnquote/internal/types"
)

// OrgRepository persists organizations and their API keys.
type OrgRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewOrgRepository creates an OrgRepository backed by the given database
// connection.
func NewOrgRepository(db DBTX, logger *slog.Logger) *OrgRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrgRepository{db: db, logger: logger}
}

// GetByID fetches an organization, including soft-deleted ones. Callers that
// must reject deleted tenants check DeletedAt themselves.
func (r *OrgRepository) GetByID(ctx context.Context, id string) (*types.Organization, error) {
	var org types.Organization
	err := r.db.QueryRow(ctx,
		`SELECT id, name, billing_email, plan, COALESCE(stripe_customer_id, ''),
		        created_at, updated_at, deleted_at
		 FROM organizations
		 WHERE id = $1`,
		id,
	).Scan(&org.ID, &org.Name, &org.BillingEmail, &org.Plan, &org.StripeCustomerID,
		&org.CreatedAt, &org.UpdatedAt, &org.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch organization", err)
	}
	return &org, nil
}

// GetPlan returns just the plan tier for an active organization, used on the
// plan limit hot path.
func (r *OrgRepository) GetPlan(ctx context.Context, orgID string) (types.PlanTier, error) {
	var plan types.PlanTier
	err := r.db.QueryRow(ctx,
		`SELECT plan FROM organizations WHERE id = $1 AND deleted_at IS NULL`,
		orgID,
	).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", err)
		}
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to fetch plan", err)
	}
	return plan, nil
}

// UpdatePlan moves an organization to a new plan tier.
func (r *OrgRepository) UpdatePlan(ctx context.Context, orgID string, plan types.PlanTier) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE organizations SET plan = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		plan, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update plan", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", nil)
	}
	return nil
}

// UpdateStripeCustomerID records the Stripe customer created for an
// organization so later billing calls can reuse it.
func (r *OrgRepository) UpdateStripeCustomerID(ctx context.Context, orgID, customerID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE organizations SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`,
		customerID, orgID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update stripe customer", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", nil)
	}
	return nil
}

// GetBillingInfo returns the stripe_customer_id and billing_email for an
// active organization. A missing customer ID comes back as an empty string.
func (r *OrgRepository) GetBillingInfo(ctx context.Context, orgID string) (string, string, error) {
	var customerID, email string
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(stripe_customer_id, ''), billing_email
		 FROM organizations
		 WHERE id = $1 AND deleted_at IS NULL`,
		orgID,
	).Scan(&customerID, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", err)
		}
		return "", "", types.NewAppError(types.ErrCodeInternalDB, "failed to fetch billing info", err)
	}
	return customerID, email, nil
}

// GetAPIKeyByPrefix looks up an API key by its public prefix. The caller
// verifies the secret against KeyHash; this method only narrows the
// candidate set.
func (r *OrgRepository) GetAPIKeyByPrefix(ctx context.Context, prefix string) (*types.APIKey, error) {
	var key types.APIKey
	err := r.db.QueryRow(ctx,
		`SELECT id, organization_id, name, key_prefix, key_hash, last_used_at, revoked_at, created_at
		 FROM api_keys
		 WHERE key_prefix = $1`,
		prefix,
	).Scan(&key.ID, &key.OrganizationID, &key.Name, &key.KeyPrefix, &key.KeyHash,
		&key.LastUsedAt, &key.RevokedAt, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeAuthKeyInvalid, "api key not recognized", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch api key", err)
	}
	return &key, nil
}

// TouchAPIKey records a successful use of the key. Best-effort: auth must not
// fail because the timestamp write did.
func (r *OrgRepository) TouchAPIKey(ctx context.Context, keyID string) {
	_, err := r.db.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`,
		keyID,
	)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to update api key last_used_at",
			slog.String("api_key_id", keyID),
			slog.String("error", err.Error()),
		)
	}
}
