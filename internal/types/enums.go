package types

// LawnCondition is the assessed categorical state of a lawn.
// An absent value on PropertyAssessment means "not assessed".
type LawnCondition string

const (
	LawnHealthy LawnCondition = "healthy"
	LawnPatchy  LawnCondition = "patchy"
	LawnPoor    LawnCondition = "poor"
	LawnDead    LawnCondition = "dead"
)

// SoilCondition is the assessed categorical state of the soil.
type SoilCondition string

const (
	SoilNormal       SoilCondition = "normal"
	SoilCompacted    SoilCondition = "compacted"
	SoilContaminated SoilCondition = "contaminated"
	SoilClay         SoilCondition = "clay"
	SoilSandy        SoilCondition = "sandy"
)

// AdjustmentCategory tags a pricing adjustment with the dimension that
// triggered it. Used for grouping in quote summaries.
type AdjustmentCategory string

const (
	CategoryCondition  AdjustmentCategory = "condition"
	CategoryComplexity AdjustmentCategory = "complexity"
	CategoryAccess     AdjustmentCategory = "access"
	CategoryEquipment  AdjustmentCategory = "equipment"
)

// SuggestionPriority ranks a recommended service line item.
type SuggestionPriority string

const (
	PriorityHigh   SuggestionPriority = "high"
	PriorityMedium SuggestionPriority = "medium"
	PriorityLow    SuggestionPriority = "low"
)

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
)

// AssessmentStatus represents the lifecycle state of a property assessment.
type AssessmentStatus string

const (
	AssessmentScheduled AssessmentStatus = "scheduled"
	AssessmentCompleted AssessmentStatus = "completed"
	AssessmentCancelled AssessmentStatus = "cancelled"
)

// PlanTier identifies the billing plan for an organization.
type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanStarter  PlanTier = "starter"
	PlanPro      PlanTier = "pro"
	PlanBusiness PlanTier = "business"
)

// ResourceType identifies a plan-limited resource for usage enforcement.
type ResourceType string

const (
	ResourceQuotes  ResourceType = "quotes"
	ResourceClients ResourceType = "clients"
	ResourceItems   ResourceType = "items"
)

// UserRole defines authorization levels within an organization.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)
