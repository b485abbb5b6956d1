// Package billing provides plan management and billing domain logic.
package billing

import "lawnquote/internal/types"

// PlanRegistry defines the authoritative limits for each tier.
// This is the single source of truth for what each plan allows.
type PlanRegistry interface {
	// GetLimits returns the resource limits for the given plan tier.
	// For unknown tiers, returns the most restrictive (Free) limits
	// to fail safely.
	GetLimits(tier types.PlanTier) types.PlanLimits
}

// staticPlanRegistry is a compile-time plan registry backed by an in-memory map.
// It implements PlanRegistry and is the standard implementation for production use.
type staticPlanRegistry struct {
	limits map[types.PlanTier]types.PlanLimits
}

// planDefaults defines the hardcoded plan limits:
//
//	| Plan     | Quotes/Month  | Clients       | Catalog Items |
//	|----------|---------------|---------------|---------------|
//	| Free     | 5             | 10            | 15            |
//	| Starter  | 50            | 100           | 100           |
//	| Pro      | 500           | 1,000         | 500           |
//	| Business | 0 (unlimited) | 0 (unlimited) | 0 (unlimited) |
//
// Business uses 0 to represent "unlimited" -- enforcement code must treat 0 as no limit.
var planDefaults = map[types.PlanTier]types.PlanLimits{
	types.PlanFree: {
		MaxQuotesMonthly: 5,
		MaxClients:       10,
		MaxItems:         15,
	},
	types.PlanStarter: {
		MaxQuotesMonthly: 50,
		MaxClients:       100,
		MaxItems:         100,
	},
	types.PlanPro: {
		MaxQuotesMonthly: 500,
		MaxClients:       1000,
		MaxItems:         500,
	},
	types.PlanBusiness: {
		MaxQuotesMonthly: 0, // Unlimited -- enforcement treats 0 as no limit
		MaxClients:       0, // Unlimited -- enforcement treats 0 as no limit
		MaxItems:         0, // Unlimited -- enforcement treats 0 as no limit
	},
}

// freeLimits is cached to avoid map lookups on the fallback path.
var freeLimits = planDefaults[types.PlanFree]

// NewStaticPlanRegistry returns a PlanRegistry backed by the hardcoded plan
// limits. This is the standard production implementation; no database or
// external service is required.
func NewStaticPlanRegistry() PlanRegistry {
	// Copy the defaults into a new map so callers cannot mutate the package-level variable.
	m := make(map[types.PlanTier]types.PlanLimits, len(planDefaults))
	for k, v := range planDefaults {
		m[k] = v
	}
	return &staticPlanRegistry{limits: m}
}

// GetLimits returns the resource limits for the given plan tier.
// If the tier is unknown, it returns the Free tier limits as a safe default.
func (r *staticPlanRegistry) GetLimits(tier types.PlanTier) types.PlanLimits {
	if limits, ok := r.limits[tier]; ok {
		return limits
	}
	return freeLimits
}
