// Package pricing implements the assessment-driven pricing engine for
// LawnQuote. Given a property assessment and a catalog of candidate service
// line items, it produces a multiplicative price adjustment with itemized
// reasons, a list of suggested line items with quantities and priorities,
// an estimated labor-hour figure, and a plain-text quote summary.
//
// Every entry point is a pure, synchronous function over its inputs: no I/O,
// no shared state, safe for concurrent use. Missing assessment fields
// degrade to "no adjustment" rather than failing; there is no error path.
package pricing

import (
	"math"

	"lawnquote/internal/types"
)

// PricingAdjustment is one multiplicative surcharge applied to a base price,
// with an attached human-readable justification. Adjustments are pure
// outputs: they are assembled into a result and never persisted by this
// package.
type PricingAdjustment struct {
	Factor     string                   `json:"factor"`
	Multiplier float64                  `json:"multiplier"`
	Reason     string                   `json:"reason"`
	Category   types.AdjustmentCategory `json:"category"`
}

// SuggestedItem pairs a matched catalog item with a computed quantity, a
// reason, and a priority.
type SuggestedItem struct {
	Item     types.LineItem           `json:"item"`
	Quantity float64                  `json:"quantity"`
	Reason   string                   `json:"reason"`
	Priority types.SuggestionPriority `json:"priority"`
}

// AssessmentPricingResult aggregates the base price, the ordered list of
// triggered adjustments (insertion order equals evaluation order), the final
// price, and the total multiplier.
//
// Invariant: FinalPrice == BasePrice * TotalMultiplier, and TotalMultiplier
// is the product of all adjustment multipliers (1.0 when none trigger).
type AssessmentPricingResult struct {
	BasePrice       float64             `json:"base_price"`
	Adjustments     []PricingAdjustment `json:"adjustments"`
	TotalMultiplier float64             `json:"total_multiplier"`
	FinalPrice      float64             `json:"final_price"`
	SuggestedItems  []SuggestedItem     `json:"suggested_items"`
}

// areaInThousands returns the effective lawn area expressed in whole
// 1000 sq ft units, rounded up. Used as the default quantity for
// area-proportional service suggestions.
func areaInThousands(a *types.PropertyAssessment) float64 {
	return math.Ceil(a.LawnArea() / 1000)
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
