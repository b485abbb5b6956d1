package pricing

import (
	"fmt"
	"strings"

	"lawnquote/internal/types"
)

// GenerateAssessmentLineItems recommends catalog line items for the
// conditions found in an assessment. For each condition-driven rule, it
// searches availableItems for the first item (in catalog order) whose name
// contains one of the rule's keywords, case-insensitively, and emits one
// suggestion with a computed quantity and priority. A rule whose keywords
// match nothing in the catalog silently produces no suggestion.
//
// Multiple rules may independently match the same catalog item. An empty
// catalog always yields an empty suggestion list.
func GenerateAssessmentLineItems(
	assessment *types.PropertyAssessment,
	availableItems []types.LineItem,
) []SuggestedItem {
	suggestions := []SuggestedItem{}
	if assessment == nil || len(availableItems) == 0 {
		return suggestions
	}

	area := areaInThousands(assessment)

	emit := func(qty float64, reason string, priority types.SuggestionPriority, keywords ...string) {
		if item, ok := matchItem(availableItems, keywords); ok {
			suggestions = append(suggestions, SuggestedItem{
				Item:     item,
				Quantity: qty,
				Reason:   reason,
				Priority: priority,
			})
		}
	}

	// Lawn replacement for dead or poor lawns: new turf plus ground prep.
	if assessment.LawnCondition != nil &&
		(*assessment.LawnCondition == types.LawnDead || *assessment.LawnCondition == types.LawnPoor) {
		reason := fmt.Sprintf("Lawn in %s condition needs full replacement", *assessment.LawnCondition)
		emit(area, reason, types.PriorityHigh, "sod", "turf")
		emit(area, "Ground preparation before new turf installation", types.PriorityHigh, "soil prep", "tilling")
	}

	// Overseeding for patchy lawns.
	if assessment.LawnCondition != nil && *assessment.LawnCondition == types.LawnPatchy {
		emit(area, "Patchy lawn benefits from overseeding", types.PriorityMedium, "overseed", "seed")
	}

	// Aeration for compacted soil.
	if assessment.SoilCondition != nil && *assessment.SoilCondition == types.SoilCompacted {
		emit(area, "Compacted soil needs core aeration", types.PriorityHigh, "aerat")
	}

	// Weed treatment above 25% coverage; high priority above 50%.
	if assessment.WeedCoverage != nil && *assessment.WeedCoverage > 25 {
		priority := types.PriorityMedium
		if *assessment.WeedCoverage > 50 {
			priority = types.PriorityHigh
		}
		reason := fmt.Sprintf("Weed coverage of %.0f%% needs treatment", *assessment.WeedCoverage)
		emit(area, reason, priority, "weed", "herbicide")
	}

	// Fertilization for nutrient-poor soil structures.
	if assessment.SoilCondition != nil &&
		(*assessment.SoilCondition == types.SoilSandy || *assessment.SoilCondition == types.SoilClay) {
		reason := fmt.Sprintf("%s soil needs nutrient supplementation",
			capitalize(string(*assessment.SoilCondition)))
		emit(area, reason, types.PriorityMedium, "fertiliz", "nutrient")
	}

	// pH correction. The branches are mutually exclusive by construction.
	if assessment.SoilPH != nil {
		switch ph := *assessment.SoilPH; {
		case ph < 6.0:
			emit(area, fmt.Sprintf("Soil pH of %.1f is acidic; lime application recommended", ph),
				types.PriorityMedium, "lime")
		case ph > 7.5:
			emit(area, fmt.Sprintf("Soil pH of %.1f is alkaline; sulfur application recommended", ph),
				types.PriorityMedium, "sulfur")
		}
	}

	// Drainage correction is priced per installation, not per area.
	if assessment.DrainageQuality != nil && *assessment.DrainageQuality < 5 {
		emit(1, fmt.Sprintf("Drainage quality of %.0f/10 indicates standing water risk", *assessment.DrainageQuality),
			types.PriorityMedium, "drain", "french drain")
	}

	return suggestions
}

// capitalize upper-cases the first byte of an ASCII condition name for
// display in suggestion reasons.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// matchItem returns the first catalog item whose name contains any of the
// keywords, case-insensitively.
func matchItem(items []types.LineItem, keywords []string) (types.LineItem, bool) {
	for _, item := range items {
		name := strings.ToLower(item.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return item, true
			}
		}
	}
	return types.LineItem{}, false
}
