package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawnquote/internal/types"
)

// testCatalog is a representative landscaping service catalog.
func testCatalog() []types.LineItem {
	return []types.LineItem{
		{ID: "li_1", Name: "Sod Installation", Unit: "per 1000 sqft", Cost: 850},
		{ID: "li_2", Name: "Soil Prep & Grading", Unit: "per 1000 sqft", Cost: 400},
		{ID: "li_3", Name: "Overseeding Service", Unit: "per 1000 sqft", Cost: 180},
		{ID: "li_4", Name: "Core Aeration", Unit: "per 1000 sqft", Cost: 120},
		{ID: "li_5", Name: "Weed Control Treatment", Unit: "per 1000 sqft", Cost: 95},
		{ID: "li_6", Name: "Fertilizer Application", Unit: "per 1000 sqft", Cost: 75},
		{ID: "li_7", Name: "Lime Application", Unit: "per 1000 sqft", Cost: 60},
		{ID: "li_8", Name: "Sulfur Application", Unit: "per 1000 sqft", Cost: 65},
		{ID: "li_9", Name: "French Drain Installation", Unit: "per installation", Cost: 2400},
	}
}

func TestGenerateAssessmentLineItems_EmptyCatalog(t *testing.T) {
	a := &types.PropertyAssessment{
		LawnCondition: lawn(types.LawnDead),
		WeedCoverage:  fp(90),
		SoilPH:        fp(5.0),
	}

	assert.Empty(t, GenerateAssessmentLineItems(a, nil))
	assert.Empty(t, GenerateAssessmentLineItems(a, []types.LineItem{}))
}

func TestGenerateAssessmentLineItems_DeadLawn(t *testing.T) {
	a := &types.PropertyAssessment{
		LawnCondition: lawn(types.LawnDead),
		LawnAreaSqFt:  fp(3500),
	}

	suggestions := GenerateAssessmentLineItems(a, testCatalog())

	require.Len(t, suggestions, 2)

	// Sod first, then ground prep, both high priority at ceil(3500/1000)=4.
	assert.Equal(t, "Sod Installation", suggestions[0].Item.Name)
	assert.Equal(t, 4.0, suggestions[0].Quantity)
	assert.Equal(t, types.PriorityHigh, suggestions[0].Priority)

	assert.Equal(t, "Soil Prep & Grading", suggestions[1].Item.Name)
	assert.Equal(t, 4.0, suggestions[1].Quantity)
	assert.Equal(t, types.PriorityHigh, suggestions[1].Priority)
}

func TestGenerateAssessmentLineItems_PatchyLawn(t *testing.T) {
	a := &types.PropertyAssessment{
		LawnCondition: lawn(types.LawnPatchy),
	}

	suggestions := GenerateAssessmentLineItems(a, testCatalog())

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Overseeding Service", suggestions[0].Item.Name)
	assert.Equal(t, 1.0, suggestions[0].Quantity) // default 1000 sq ft area
	assert.Equal(t, types.PriorityMedium, suggestions[0].Priority)
}

func TestGenerateAssessmentLineItems_WeedPriorityTiers(t *testing.T) {
	a := &types.PropertyAssessment{WeedCoverage: fp(40)}
	suggestions := GenerateAssessmentLineItems(a, testCatalog())
	require.Len(t, suggestions, 1)
	assert.Equal(t, types.PriorityMedium, suggestions[0].Priority)

	a.WeedCoverage = fp(70)
	suggestions = GenerateAssessmentLineItems(a, testCatalog())
	require.Len(t, suggestions, 1)
	assert.Equal(t, types.PriorityHigh, suggestions[0].Priority)

	// Exactly 25 is below the threshold.
	a.WeedCoverage = fp(25)
	assert.Empty(t, GenerateAssessmentLineItems(a, testCatalog()))
}

func TestGenerateAssessmentLineItems_SoilRules(t *testing.T) {
	a := &types.PropertyAssessment{SoilCondition: soil(types.SoilCompacted)}
	suggestions := GenerateAssessmentLineItems(a, testCatalog())
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Core Aeration", suggestions[0].Item.Name)
	assert.Equal(t, types.PriorityHigh, suggestions[0].Priority)

	for _, cond := range []types.SoilCondition{types.SoilSandy, types.SoilClay} {
		a.SoilCondition = soil(cond)
		suggestions = GenerateAssessmentLineItems(a, testCatalog())
		require.Len(t, suggestions, 1, "soil %s", cond)
		assert.Equal(t, "Fertilizer Application", suggestions[0].Item.Name)
	}
}

func TestGenerateAssessmentLineItems_PHCorrection(t *testing.T) {
	a := &types.PropertyAssessment{SoilPH: fp(5.4)}
	suggestions := GenerateAssessmentLineItems(a, testCatalog())
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Lime Application", suggestions[0].Item.Name)

	a.SoilPH = fp(8.1)
	suggestions = GenerateAssessmentLineItems(a, testCatalog())
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Sulfur Application", suggestions[0].Item.Name)

	// Neutral pH suggests nothing.
	a.SoilPH = fp(6.8)
	assert.Empty(t, GenerateAssessmentLineItems(a, testCatalog()))
}

func TestGenerateAssessmentLineItems_DrainageFixedQuantity(t *testing.T) {
	a := &types.PropertyAssessment{
		DrainageQuality: fp(3),
		LawnAreaSqFt:    fp(8000), // quantity must stay 1 regardless of area
	}

	suggestions := GenerateAssessmentLineItems(a, testCatalog())

	require.Len(t, suggestions, 1)
	assert.Equal(t, "French Drain Installation", suggestions[0].Item.Name)
	assert.Equal(t, 1.0, suggestions[0].Quantity)
}

func TestGenerateAssessmentLineItems_UnmatchedRuleSkippedSilently(t *testing.T) {
	// A catalog with no sod/turf item: the dead-lawn rule finds only the
	// ground prep match and skips the replacement suggestion.
	catalog := []types.LineItem{
		{ID: "li_2", Name: "Tilling Service", Unit: "per 1000 sqft", Cost: 300},
	}
	a := &types.PropertyAssessment{LawnCondition: lawn(types.LawnPoor)}

	suggestions := GenerateAssessmentLineItems(a, catalog)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Tilling Service", suggestions[0].Item.Name)
}

func TestGenerateAssessmentLineItems_FirstMatchInCatalogOrder(t *testing.T) {
	catalog := []types.LineItem{
		{ID: "li_a", Name: "Premium Weed Barrier", Cost: 200},
		{ID: "li_b", Name: "Herbicide Spot Spray", Cost: 50},
	}
	a := &types.PropertyAssessment{WeedCoverage: fp(30)}

	suggestions := GenerateAssessmentLineItems(a, catalog)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "li_a", suggestions[0].Item.ID)
}

func TestGenerateAssessmentLineItems_MatchingIsCaseInsensitive(t *testing.T) {
	catalog := []types.LineItem{
		{ID: "li_x", Name: "CORE AERATION SERVICE", Cost: 120},
	}
	a := &types.PropertyAssessment{SoilCondition: soil(types.SoilCompacted)}

	suggestions := GenerateAssessmentLineItems(a, catalog)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "li_x", suggestions[0].Item.ID)
}

func TestGenerateAssessmentLineItems_CombinedConditions(t *testing.T) {
	a := &types.PropertyAssessment{
		LawnCondition:   lawn(types.LawnDead),
		SoilCondition:   soil(types.SoilCompacted),
		WeedCoverage:    fp(60),
		SoilPH:          fp(5.5),
		DrainageQuality: fp(2),
		LawnAreaSqFt:    fp(2200),
	}

	suggestions := GenerateAssessmentLineItems(a, testCatalog())

	// sod + prep + aeration + weed + lime + drain.
	require.Len(t, suggestions, 6)
	for _, s := range suggestions[:4] {
		assert.Equal(t, 3.0, s.Quantity, "area-proportional rule for %s", s.Item.Name)
	}
	assert.Equal(t, 1.0, suggestions[5].Quantity)
}
