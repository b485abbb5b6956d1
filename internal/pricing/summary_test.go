package pricing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lawnquote/internal/types"
)

func TestGenerateAssessmentQuoteSummary_FullReport(t *testing.T) {
	a := &types.PropertyAssessment{
		PropertyAddress: "42 Maple Street, Springfield",
		LawnAreaSqFt:    fp(2000),
		LawnCondition:   lawn(types.LawnPoor),
		SoilCondition:   soil(types.SoilCompacted),
		WeedCoverage:    fp(35),
		SoilPH:          fp(5.8),
		DrainageQuality: fp(4),
		ComplexityScore: fp(7),
		SlopeGrade:      fp(10),
		DumpTruckAccess: bp(true),
	}

	result := CalculateAssessmentPricing(a, nil, 2000)
	result.SuggestedItems = GenerateAssessmentLineItems(a, testCatalog())

	summary := GenerateAssessmentQuoteSummary(a, result)

	assert.Contains(t, summary, "PROPERTY OVERVIEW")
	assert.Contains(t, summary, "CONDITION ANALYSIS")
	assert.Contains(t, summary, "PRICING ADJUSTMENTS")
	assert.Contains(t, summary, "RECOMMENDED SERVICES")

	assert.Contains(t, summary, "42 Maple Street, Springfield")
	assert.Contains(t, summary, "Lawn area: 2000 sq ft")
	assert.Contains(t, summary, "Lawn condition: poor")
	assert.Contains(t, summary, "Weed coverage: 35%")
	assert.Contains(t, summary, "Soil pH: 5.8")

	// Percentage deltas use zero decimal places.
	assert.Contains(t, summary, "Lawn Renovation: +40%")
	assert.Contains(t, summary, "Soil Decompaction: +25%")
	assert.Contains(t, summary, "Weed Treatment: +15%")

	// Suggestions render with priority, quantity, and unit.
	assert.Contains(t, summary, "[high] Sod Installation x 2")
}

func TestGenerateAssessmentQuoteSummary_MissingFieldsRenderFallbacks(t *testing.T) {
	a := &types.PropertyAssessment{DumpTruckAccess: bp(true)}
	result := CalculateAssessmentPricing(a, nil, 100)

	summary := GenerateAssessmentQuoteSummary(a, result)

	assert.Contains(t, summary, "Address: Address not available")
	assert.Contains(t, summary, "Lawn area: Not assessed")
	assert.Contains(t, summary, "Lawn condition: Not assessed")
	assert.Contains(t, summary, "Soil condition: Not assessed")
	assert.Contains(t, summary, "Soil pH: Not assessed")
	assert.Contains(t, summary, "No condition-based adjustments apply.")
	assert.Contains(t, summary, "No additional services recommended.")
}

func TestGenerateAssessmentQuoteSummary_NilInputs(t *testing.T) {
	summary := GenerateAssessmentQuoteSummary(nil, nil)

	// All four sections still render with fallbacks; no panics.
	assert.Contains(t, summary, "PROPERTY OVERVIEW")
	assert.Contains(t, summary, "Address not available")
	assert.Contains(t, summary, "No additional services recommended.")
}

func TestGenerateAssessmentQuoteSummary_PricesFormattedWithCents(t *testing.T) {
	a := &types.PropertyAssessment{
		LawnCondition:   lawn(types.LawnDead),
		DumpTruckAccess: bp(true),
	}
	result := CalculateAssessmentPricing(a, nil, 1500)

	summary := GenerateAssessmentQuoteSummary(a, result)

	assert.Contains(t, summary, "$1500.00")
	assert.Contains(t, summary, "$2100.00")
	assert.Contains(t, summary, "Total adjustment: +40%")
}

func TestGenerateAssessmentQuoteSummary_Idempotent(t *testing.T) {
	a := &types.PropertyAssessment{
		PropertyAddress: "9 Elm Court",
		WeedCoverage:    fp(55),
	}
	result := CalculateAssessmentPricing(a, nil, 800)

	first := GenerateAssessmentQuoteSummary(a, result)
	second := GenerateAssessmentQuoteSummary(a, result)
	assert.Equal(t, first, second)

	// The report is multi-line plain text.
	assert.Greater(t, len(strings.Split(first, "\n")), 10)
}
