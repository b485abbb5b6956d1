package billing

import (
	"context"
	"time"

	"lawnquote/internal/types"
)

// UsageEnforcer checks plan limits before resource creation.
type UsageEnforcer interface {
	// CheckLimit verifies whether the organization can create `count` more
	// resources of the given type. Returns nil if allowed, or a limit_*
	// AppError if the plan ceiling would be exceeded.
	CheckLimit(ctx context.Context, orgID string, resource types.ResourceType, count int) error
}

// OrgLookup provides the minimal organization data needed for limit checks.
// This is a focused interface to avoid depending on the full OrgRepository.
type OrgLookup interface {
	GetPlan(ctx context.Context, orgID string) (types.PlanTier, error)
}

// UsageDB provides the Direct Count queries the enforcer needs, implemented
// by the repositories in internal/db.
type UsageDB interface {
	// CountQuotesSince counts quotes created at or after the given instant.
	CountQuotesSince(ctx context.Context, orgID string, since time.Time) (int, error)
	// CountClients counts an organization's clients.
	CountClients(ctx context.Context, orgID string) (int, error)
	// CountItems counts an organization's catalog items.
	CountItems(ctx context.Context, orgID string) (int, error)
}

// usageEnforcerImpl implements UsageEnforcer with Direct Count queries so
// limits stay accurate without a usage counter table.
type usageEnforcerImpl struct {
	orgLookup    OrgLookup
	usageDB      UsageDB
	planRegistry PlanRegistry
	now          func() time.Time
}

// NewUsageEnforcer creates the standard UsageEnforcer implementation.
func NewUsageEnforcer(orgLookup OrgLookup, usageDB UsageDB, planRegistry PlanRegistry) *usageEnforcerImpl {
	return &usageEnforcerImpl{
		orgLookup:    orgLookup,
		usageDB:      usageDB,
		planRegistry: planRegistry,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ UsageEnforcer = (*usageEnforcerImpl)(nil)

// CheckLimit compares current usage plus the requested count against the
// plan ceiling for the resource. A limit of 0 means unlimited.
//
// Quote limits are monthly: the count window starts at the first of the
// current calendar month (UTC). Client and item limits are absolute.
func (e *usageEnforcerImpl) CheckLimit(
	ctx context.Context,
	orgID string,
	resource types.ResourceType,
	count int,
) error {
	plan, err := e.orgLookup.GetPlan(ctx, orgID)
	if err != nil {
		return err
	}
	limits := e.planRegistry.GetLimits(plan)

	switch resource {
	case types.ResourceQuotes:
		if limits.MaxQuotesMonthly == 0 {
			return nil
		}
		now := e.now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		current, err := e.usageDB.CountQuotesSince(ctx, orgID, monthStart)
		if err != nil {
			return err
		}
		if current+count > limits.MaxQuotesMonthly {
			return limitError(types.ErrCodeLimitQuotes, "monthly quote limit exceeded for current plan",
				current, limits.MaxQuotesMonthly, plan)
		}
		return nil

	case types.ResourceClients:
		if limits.MaxClients == 0 {
			return nil
		}
		current, err := e.usageDB.CountClients(ctx, orgID)
		if err != nil {
			return err
		}
		if current+count > limits.MaxClients {
			return limitError(types.ErrCodeLimitClients, "client limit exceeded for current plan",
				current, limits.MaxClients, plan)
		}
		return nil

	case types.ResourceItems:
		if limits.MaxItems == 0 {
			return nil
		}
		current, err := e.usageDB.CountItems(ctx, orgID)
		if err != nil {
			return err
		}
		if current+count > limits.MaxItems {
			return limitError(types.ErrCodeLimitItems, "catalog item limit exceeded for current plan",
				current, limits.MaxItems, plan)
		}
		return nil

	default:
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"unknown resource type for limit check: "+string(resource),
			nil,
		)
	}
}

func limitError(code types.ErrorCode, msg string, current, limit int, plan types.PlanTier) error {
	return types.NewAppErrorWithDetails(code, msg, nil, map[string]any{
		"current": current,
		"limit":   limit,
		"plan":    string(plan),
	})
}
