package pricing

import (
	"fmt"
	"math"

	"lawnquote/internal/types"
)

// CalculateAssessmentPricing evaluates a fixed, ordered sequence of
// condition checks against the assessment and returns the resulting price
// adjustment. Each check is mutually exclusive within its own dimension
// (lawn condition matches at most one branch) but independent across
// dimensions (lawn and soil can both fire).
//
// baseItems is accepted for signature symmetry with
// GenerateAssessmentLineItems but is not consulted here; SuggestedItems in
// the returned result is always empty. Suggestion generation is a separate
// entry point so callers can price and recommend independently.
//
// basePrice is clamped to zero when negative or NaN. Missing assessment
// fields produce no adjustment for their dimension, with one deliberate
// exception: a missing dump-truck access flag is treated as "no access" and
// fires the hauling surcharge. Missing numeric access fields (vehicle width)
// are treated as unrestricted. This asymmetry is intentional; do not "fix"
// it without product-owner confirmation.
func CalculateAssessmentPricing(
	assessment *types.PropertyAssessment,
	baseItems []types.LineItem,
	basePrice float64,
) *AssessmentPricingResult {
	_ = baseItems

	if math.IsNaN(basePrice) || basePrice < 0 {
		basePrice = 0
	}

	result := &AssessmentPricingResult{
		BasePrice:       basePrice,
		Adjustments:     []PricingAdjustment{},
		TotalMultiplier: 1.0,
		FinalPrice:      basePrice,
		SuggestedItems:  []SuggestedItem{},
	}
	if assessment == nil {
		return result
	}

	// 1. Lawn condition.
	if assessment.LawnCondition != nil {
		switch *assessment.LawnCondition {
		case types.LawnDead, types.LawnPoor:
			result.add(PricingAdjustment{
				Factor:     "Lawn Renovation",
				Multiplier: 1.40,
				Reason:     fmt.Sprintf("Lawn in %s condition requires complete renovation", *assessment.LawnCondition),
				Category:   types.CategoryCondition,
			})
		case types.LawnPatchy:
			result.add(PricingAdjustment{
				Factor:     "Lawn Overseeding",
				Multiplier: 1.20,
				Reason:     "Patchy lawn requires overseeding and repair",
				Category:   types.CategoryCondition,
			})
		}
	}

	// 2. Soil condition. Sandy and normal soil carry no price adjustment
	// here (sandy drives a fertilizer suggestion instead).
	if assessment.SoilCondition != nil {
		switch *assessment.SoilCondition {
		case types.SoilCompacted:
			result.add(PricingAdjustment{
				Factor:     "Soil Decompaction",
				Multiplier: 1.25,
				Reason:     "Compacted soil requires aeration and amendment",
				Category:   types.CategoryCondition,
			})
		case types.SoilContaminated:
			result.add(PricingAdjustment{
				Factor:     "Soil Remediation",
				Multiplier: 1.60,
				Reason:     "Contaminated soil requires removal and replacement",
				Category:   types.CategoryCondition,
			})
		case types.SoilClay:
			result.add(PricingAdjustment{
				Factor:     "Clay Soil Amendment",
				Multiplier: 1.20,
				Reason:     "Heavy clay soil requires amendment for planting",
				Category:   types.CategoryCondition,
			})
		}
	}

	// 3. Weed coverage. Boundaries are exclusive: exactly 25 triggers
	// nothing, exactly 50 triggers the lower tier.
	if assessment.WeedCoverage != nil {
		switch cov := *assessment.WeedCoverage; {
		case cov > 50:
			result.add(PricingAdjustment{
				Factor:     "Heavy Weed Treatment",
				Multiplier: 1.30,
				Reason:     fmt.Sprintf("Weed coverage of %.0f%% requires intensive treatment", cov),
				Category:   types.CategoryCondition,
			})
		case cov > 25:
			result.add(PricingAdjustment{
				Factor:     "Weed Treatment",
				Multiplier: 1.15,
				Reason:     fmt.Sprintf("Weed coverage of %.0f%% requires targeted treatment", cov),
				Category:   types.CategoryCondition,
			})
		}
	}

	// 4. Complexity score.
	if assessment.ComplexityScore != nil {
		switch score := *assessment.ComplexityScore; {
		case score >= 8:
			result.add(PricingAdjustment{
				Factor:     "High Complexity Site",
				Multiplier: 1.25,
				Reason:     fmt.Sprintf("Site complexity score of %.0f/10 requires additional planning", score),
				Category:   types.CategoryComplexity,
			})
		case score >= 6:
			result.add(PricingAdjustment{
				Factor:     "Moderate Complexity Site",
				Multiplier: 1.10,
				Reason:     fmt.Sprintf("Site complexity score of %.0f/10 adds coordination overhead", score),
				Category:   types.CategoryComplexity,
			})
		}
	}

	// 5. Vehicle access width. Absent means "not limited".
	if assessment.VehicleAccessFeet != nil && *assessment.VehicleAccessFeet < 8 {
		result.add(PricingAdjustment{
			Factor:     "Limited Vehicle Access",
			Multiplier: 1.20,
			Reason:     fmt.Sprintf("Vehicle access of %.0f ft requires smaller equipment and hand carry", *assessment.VehicleAccessFeet),
			Category:   types.CategoryAccess,
		})
	}

	// 6. Dump-truck access. Falsy INCLUDING absent means "no access".
	if assessment.DumpTruckAccess == nil || !*assessment.DumpTruckAccess {
		result.add(PricingAdjustment{
			Factor:     "No Dump Truck Access",
			Multiplier: 1.15,
			Reason:     "Material hauling requires smaller loads without dump truck access",
			Category:   types.CategoryAccess,
		})
	}

	// 7. Crane access.
	if assessment.CraneAccessNeeded != nil && *assessment.CraneAccessNeeded {
		result.add(PricingAdjustment{
			Factor:     "Crane Required",
			Multiplier: 1.30,
			Reason:     "Crane rental and operation required for material placement",
			Category:   types.CategoryEquipment,
		})
	}

	// 8. Slope grade.
	if assessment.SlopeGrade != nil && *assessment.SlopeGrade > 15 {
		result.add(PricingAdjustment{
			Factor:     "Steep Slope",
			Multiplier: 1.20,
			Reason:     fmt.Sprintf("Slope grade of %.0f%% requires erosion control and slows work", *assessment.SlopeGrade),
			Category:   types.CategoryComplexity,
		})
	}

	// 9. Obstacle density: trees+shrubs per 1000 sq ft of lawn area.
	density := obstacleDensity(assessment)
	switch {
	case density > 10:
		result.add(PricingAdjustment{
			Factor:     "Dense Obstacles",
			Multiplier: 1.25,
			Reason:     fmt.Sprintf("Obstacle density of %.1f per 1000 sq ft requires extensive hand work", density),
			Category:   types.CategoryComplexity,
		})
	case density > 5:
		result.add(PricingAdjustment{
			Factor:     "Moderate Obstacles",
			Multiplier: 1.10,
			Reason:     fmt.Sprintf("Obstacle density of %.1f per 1000 sq ft slows machine work", density),
			Category:   types.CategoryComplexity,
		})
	}

	result.FinalPrice = result.BasePrice * result.TotalMultiplier
	return result
}

// add appends one adjustment and folds its multiplier into the running total.
func (r *AssessmentPricingResult) add(adj PricingAdjustment) {
	r.Adjustments = append(r.Adjustments, adj)
	r.TotalMultiplier *= adj.Multiplier
}

// obstacleDensity computes (trees + shrubs) per 1000 sq ft of lawn area.
// Counts default to 0 when absent; area defaults via LawnArea.
func obstacleDensity(a *types.PropertyAssessment) float64 {
	trees, shrubs := 0, 0
	if a.TreeCount != nil {
		trees = *a.TreeCount
	}
	if a.ShrubCount != nil {
		shrubs = *a.ShrubCount
	}
	return float64(trees+shrubs) / (a.LawnArea() / 1000)
}
