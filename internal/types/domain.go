package types

import (
	"time"
)

// PropertyAssessment is a site-visit record capturing measured property
// conditions used to price a landscaping job.
//
// All condition fields are optional pointers: a nil value means "not
// assessed" and is distinct from a zero value. Pricing code must never
// collapse nil into 0 or false beyond the documented defaults.
type PropertyAssessment struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`
	ClientID       string `json:"client_id,omitempty" db:"client_id"`

	PropertyAddress string           `json:"property_address,omitempty" db:"property_address"`
	Status          AssessmentStatus `json:"status" db:"status"`
	ScheduledAt     *time.Time       `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty" db:"completed_at"`

	// Lawn and soil conditions.
	LawnCondition *LawnCondition `json:"lawn_condition,omitempty" db:"lawn_condition"`
	SoilCondition *SoilCondition `json:"soil_condition,omitempty" db:"soil_condition"`
	WeedCoverage  *float64       `json:"weed_coverage_percent,omitempty" db:"weed_coverage_percent"`
	SoilPH        *float64       `json:"soil_ph,omitempty" db:"soil_ph"`
	// DrainageQuality is rated 0 (standing water) to 10 (drains freely).
	DrainageQuality *float64 `json:"drainage_quality,omitempty" db:"drainage_quality"`

	// Site complexity and access.
	ComplexityScore   *float64 `json:"complexity_score,omitempty" db:"complexity_score"`
	VehicleAccessFeet *float64 `json:"vehicle_access_width_feet,omitempty" db:"vehicle_access_width_feet"`
	DumpTruckAccess   *bool    `json:"dump_truck_access,omitempty" db:"dump_truck_access"`
	CraneAccessNeeded *bool    `json:"crane_access_needed,omitempty" db:"crane_access_needed"`
	SlopeGrade        *float64 `json:"slope_grade_percent,omitempty" db:"slope_grade_percent"`

	// Obstacles and area.
	TreeCount         *int     `json:"tree_count,omitempty" db:"tree_count"`
	ShrubCount        *int     `json:"shrub_count,omitempty" db:"shrub_count"`
	LawnAreaSqFt      *float64 `json:"lawn_area_sqft,omitempty" db:"lawn_area_sqft"`
	EstimatedAreaSqFt *float64 `json:"estimated_area_sqft,omitempty" db:"estimated_area_sqft"`

	// TotalEstimatedHours, when set by the assessor on-site, overrides any
	// computed labor estimate.
	TotalEstimatedHours *float64 `json:"total_estimated_hours,omitempty" db:"total_estimated_hours"`

	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// LawnArea returns the effective lawn area in square feet: the measured
// value if present, otherwise the estimate, otherwise a 1000 sq ft default
// so per-area math never divides by zero.
func (a *PropertyAssessment) LawnArea() float64 {
	if a.LawnAreaSqFt != nil && *a.LawnAreaSqFt > 0 {
		return *a.LawnAreaSqFt
	}
	if a.EstimatedAreaSqFt != nil && *a.EstimatedAreaSqFt > 0 {
		return *a.EstimatedAreaSqFt
	}
	return 1000
}

// LineItem is a catalog entry representing one billable service or material.
type LineItem struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Unit           string    `json:"unit" db:"unit"`
	Cost           float64   `json:"cost" db:"cost"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Client is a contractor's customer.
type Client struct {
	ID              string    `json:"id" db:"id"`
	OrganizationID  string    `json:"organization_id" db:"organization_id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email,omitempty" db:"email"`
	Phone           string    `json:"phone,omitempty" db:"phone"`
	PropertyAddress string    `json:"property_address,omitempty" db:"property_address"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// QuoteLineItem is a line on a persisted quote: a catalog item snapshot plus
// the quantity the contractor selected.
type QuoteLineItem struct {
	LineItemID string  `json:"line_item_id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	UnitCost   float64 `json:"unit_cost"`
	Quantity   float64 `json:"quantity"`
	LineTotal  float64 `json:"line_total"`
}

// AppliedAdjustment is the persisted snapshot of a pricing adjustment that
// was in effect when a quote was created. Stored as JSONB on the quote so a
// quote remains explainable after the assessment changes.
type AppliedAdjustment struct {
	Factor     string             `json:"factor"`
	Multiplier float64            `json:"multiplier"`
	Reason     string             `json:"reason"`
	Category   AdjustmentCategory `json:"category"`
}

// Quote is a persisted price quote for a client.
type Quote struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`
	ClientID       string `json:"client_id" db:"client_id"`
	AssessmentID   string `json:"assessment_id,omitempty" db:"assessment_id"`

	QuoteNumber string      `json:"quote_number" db:"quote_number"`
	Status      QuoteStatus `json:"status" db:"status"`

	LineItems       []QuoteLineItem     `json:"line_items" db:"line_items"`
	BasePrice       float64             `json:"base_price" db:"base_price"`
	Adjustments     []AppliedAdjustment `json:"adjustments" db:"adjustments"`
	TotalMultiplier float64             `json:"total_multiplier" db:"total_multiplier"`
	FinalPrice      float64             `json:"final_price" db:"final_price"`
	LaborHours      float64             `json:"labor_hours" db:"labor_hours"`

	Notes     string     `json:"notes,omitempty" db:"notes"`
	SentAt    *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// RedirectURLs carries the success and cancel URLs for a checkout flow.
type RedirectURLs struct {
	Success string `json:"success_url"`
	Cancel  string `json:"cancel_url"`
}

// Organization represents a billable tenant that owns clients, assessments,
// catalog items, and quotes.
type Organization struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	BillingEmail     string     `json:"billing_email" db:"billing_email"`
	Plan             PlanTier   `json:"plan" db:"plan"`
	StripeCustomerID string     `json:"-" db:"stripe_customer_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time `json:"-" db:"deleted_at"`
}

// APIKey is a long-lived credential for programmatic access, scoped to an
// organization. Only the bcrypt hash of the secret is stored.
type APIKey struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	Name           string     `json:"name" db:"name"`
	KeyPrefix      string     `json:"key_prefix" db:"key_prefix"`
	KeyHash        string     `json:"-" db:"key_hash"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	RevokedAt      *time.Time `json:"-" db:"revoked_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// PlanLimits defines the resource ceilings for a plan tier.
// Zero means unlimited; enforcement code must treat 0 as no limit.
type PlanLimits struct {
	MaxQuotesMonthly int `json:"max_quotes_monthly"`
	MaxClients       int `json:"max_clients"`
	MaxItems         int `json:"max_items"`
}
