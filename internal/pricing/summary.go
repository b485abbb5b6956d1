package pricing

import (
	"fmt"
	"strings"

	"lawnquote/internal/types"
)

// Fallback strings rendered when an assessment field was never recorded.
const (
	fallbackAddress     = "Address not available"
	fallbackNotAssessed = "Not assessed"
)

// GenerateAssessmentQuoteSummary renders a fixed-format, human-readable
// plain-text report for a priced assessment: property overview, condition
// analysis, pricing adjustments with percentage deltas, and recommended
// services. It is purely presentational; missing fields render as literal
// fallback strings and there are no failure modes.
//
// Percentage deltas are formatted as (multiplier-1)*100 with zero decimal
// places.
func GenerateAssessmentQuoteSummary(
	assessment *types.PropertyAssessment,
	result *AssessmentPricingResult,
) string {
	var b strings.Builder

	b.WriteString("PROPERTY ASSESSMENT QUOTE SUMMARY\n")
	b.WriteString("=================================\n\n")

	writePropertyOverview(&b, assessment)
	writeConditionAnalysis(&b, assessment)
	writePricingAdjustments(&b, result)
	writeRecommendedServices(&b, result)

	return b.String()
}

func writePropertyOverview(b *strings.Builder, a *types.PropertyAssessment) {
	b.WriteString("PROPERTY OVERVIEW\n")
	b.WriteString("-----------------\n")

	address := fallbackAddress
	if a != nil && a.PropertyAddress != "" {
		address = a.PropertyAddress
	}
	fmt.Fprintf(b, "Address: %s\n", address)

	if a != nil && (a.LawnAreaSqFt != nil || a.EstimatedAreaSqFt != nil) {
		fmt.Fprintf(b, "Lawn area: %.0f sq ft\n", a.LawnArea())
	} else {
		fmt.Fprintf(b, "Lawn area: %s\n", fallbackNotAssessed)
	}

	fmt.Fprintf(b, "Lawn condition: %s\n", conditionOrFallback(a))
	fmt.Fprintf(b, "Soil condition: %s\n\n", soilOrFallback(a))
}

func writeConditionAnalysis(b *strings.Builder, a *types.PropertyAssessment) {
	b.WriteString("CONDITION ANALYSIS\n")
	b.WriteString("------------------\n")

	if a != nil && a.WeedCoverage != nil {
		fmt.Fprintf(b, "Weed coverage: %.0f%%\n", *a.WeedCoverage)
	} else {
		fmt.Fprintf(b, "Weed coverage: %s\n", fallbackNotAssessed)
	}

	if a != nil && a.SoilPH != nil {
		fmt.Fprintf(b, "Soil pH: %.1f\n", *a.SoilPH)
	} else {
		fmt.Fprintf(b, "Soil pH: %s\n", fallbackNotAssessed)
	}

	if a != nil && a.DrainageQuality != nil {
		fmt.Fprintf(b, "Drainage quality: %.0f/10\n", *a.DrainageQuality)
	} else {
		fmt.Fprintf(b, "Drainage quality: %s\n", fallbackNotAssessed)
	}

	if a != nil && a.ComplexityScore != nil {
		fmt.Fprintf(b, "Site complexity: %.0f/10\n", *a.ComplexityScore)
	} else {
		fmt.Fprintf(b, "Site complexity: %s\n", fallbackNotAssessed)
	}

	if a != nil && a.SlopeGrade != nil {
		fmt.Fprintf(b, "Slope grade: %.0f%%\n", *a.SlopeGrade)
	} else {
		fmt.Fprintf(b, "Slope grade: %s\n", fallbackNotAssessed)
	}

	b.WriteString("\n")
}

func writePricingAdjustments(b *strings.Builder, result *AssessmentPricingResult) {
	b.WriteString("PRICING ADJUSTMENTS\n")
	b.WriteString("-------------------\n")

	if result == nil || len(result.Adjustments) == 0 {
		b.WriteString("No condition-based adjustments apply.\n\n")
		if result != nil {
			fmt.Fprintf(b, "Base price:  $%.2f\n", result.BasePrice)
			fmt.Fprintf(b, "Final price: $%.2f\n\n", result.FinalPrice)
		}
		return
	}

	for _, adj := range result.Adjustments {
		fmt.Fprintf(b, "%s: +%.0f%% (%s)\n", adj.Factor, (adj.Multiplier-1)*100, adj.Reason)
	}
	fmt.Fprintf(b, "\nBase price:       $%.2f\n", result.BasePrice)
	fmt.Fprintf(b, "Total adjustment: +%.0f%%\n", (result.TotalMultiplier-1)*100)
	fmt.Fprintf(b, "Final price:      $%.2f\n\n", result.FinalPrice)
}

func writeRecommendedServices(b *strings.Builder, result *AssessmentPricingResult) {
	b.WriteString("RECOMMENDED SERVICES\n")
	b.WriteString("--------------------\n")

	if result == nil || len(result.SuggestedItems) == 0 {
		b.WriteString("No additional services recommended.\n")
		return
	}

	for _, s := range result.SuggestedItems {
		fmt.Fprintf(b, "[%s] %s x %.0f %s - %s\n",
			s.Priority, s.Item.Name, s.Quantity, s.Item.Unit, s.Reason)
	}
}

func conditionOrFallback(a *types.PropertyAssessment) string {
	if a == nil || a.LawnCondition == nil {
		return fallbackNotAssessed
	}
	return string(*a.LawnCondition)
}

func soilOrFallback(a *types.PropertyAssessment) string {
	if a == nil || a.SoilCondition == nil {
		return fallbackNotAssessed
	}
	return string(*a.SoilCondition)
}
