package pricing

import (
	"lawnquote/internal/types"
)

// hoursPerThousandSqFt is the baseline labor rate: 4 hours of crew time per
// 1000 sq ft of lawn area.
const hoursPerThousandSqFt = 4.0

// CalculateLaborHours estimates total labor hours for a job, rounded to one
// decimal place.
//
// When the assessor recorded TotalEstimatedHours on-site, that figure is
// returned verbatim and every other input, including baseHours, is ignored.
// This is an explicit override path.
//
// Otherwise the estimate starts from baseHours plus the area baseline
// (4 hours per 1000 sq ft), then compounds multipliers for the conditions
// that slow a crew down. The complexity multiplier 1 + (score-5) * 0.1 can
// reduce hours below baseline for scores under 5; that is intentional.
// All multipliers apply sequentially to the running total, not
// independently to the baseline.
func CalculateLaborHours(assessment *types.PropertyAssessment, baseHours float64) float64 {
	if assessment == nil {
		return round1(baseHours)
	}
	if assessment.TotalEstimatedHours != nil {
		return round1(*assessment.TotalEstimatedHours)
	}

	hours := baseHours + assessment.LawnArea()/1000*hoursPerThousandSqFt

	if assessment.ComplexityScore != nil {
		hours *= 1 + (*assessment.ComplexityScore-5)*0.1
	}

	if assessment.LawnCondition != nil {
		switch *assessment.LawnCondition {
		case types.LawnDead, types.LawnPoor:
			hours *= 1.5
		case types.LawnPatchy:
			hours *= 1.2
		}
	}

	if assessment.SoilCondition != nil && *assessment.SoilCondition == types.SoilCompacted {
		hours *= 1.3
	}

	if assessment.VehicleAccessFeet != nil && *assessment.VehicleAccessFeet < 8 {
		hours *= 1.2
	}

	// Unlike pricing, only an explicit "no access" answer slows the
	// estimate; an unassessed flag leaves hours untouched.
	if assessment.DumpTruckAccess != nil && !*assessment.DumpTruckAccess {
		hours *= 1.15
	}

	return round1(hours)
}
