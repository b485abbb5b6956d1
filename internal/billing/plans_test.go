package billing

import (
	"testing"

	"lawnquote/internal/types"
)

func TestNewStaticPlanRegistry(t *testing.T) {
	reg := NewStaticPlanRegistry()
	if reg == nil {
		t.Fatal("NewStaticPlanRegistry returned nil")
	}
}

func TestGetLimits_FreeTier(t *testing.T) {
	reg := NewStaticPlanRegistry()
	limits := reg.GetLimits(types.PlanFree)

	assertLimits(t, "Free", limits, types.PlanLimits{
		MaxQuotesMonthly: 5,
		MaxClients:       10,
		MaxItems:         15,
	})
}

func TestGetLimits_StarterTier(t *testing.T) {
	reg := NewStaticPlanRegistry()
	limits := reg.GetLimits(types.PlanStarter)

	assertLimits(t, "Starter", limits, types.PlanLimits{
		MaxQuotesMonthly: 50,
		MaxClients:       100,
		MaxItems:         100,
	})
}

func TestGetLimits_ProTier(t *testing.T) {
	reg := NewStaticPlanRegistry()
	limits := reg.GetLimits(types.PlanPro)

	assertLimits(t, "Pro", limits, types.PlanLimits{
		MaxQuotesMonthly: 500,
		MaxClients:       1000,
		MaxItems:         500,
	})
}

func TestGetLimits_BusinessTierIsUnlimited(t *testing.T) {
	reg := NewStaticPlanRegistry()
	limits := reg.GetLimits(types.PlanBusiness)

	assertLimits(t, "Business", limits, types.PlanLimits{
		MaxQuotesMonthly: 0,
		MaxClients:       0,
		MaxItems:         0,
	})
}

func TestGetLimits_UnknownTierFallsBackToFree(t *testing.T) {
	reg := NewStaticPlanRegistry()
	limits := reg.GetLimits(types.PlanTier("nonexistent"))

	assertLimits(t, "Unknown (fallback to Free)", limits, types.PlanLimits{
		MaxQuotesMonthly: 5,
		MaxClients:       10,
		MaxItems:         15,
	})
}

func TestGetLimits_EmptyTierFallsBackToFree(t *testing.T) {
	reg := NewStaticPlanRegistry()
	limits := reg.GetLimits(types.PlanTier(""))

	assertLimits(t, "Empty (fallback to Free)", limits, types.PlanLimits{
		MaxQuotesMonthly: 5,
		MaxClients:       10,
		MaxItems:         15,
	})
}

func TestPlanRegistryInterface(t *testing.T) {
	// Compile-time check that staticPlanRegistry satisfies PlanRegistry.
	var _ PlanRegistry = NewStaticPlanRegistry()
}

func assertLimits(t *testing.T, name string, got, want types.PlanLimits) {
	t.Helper()
	if got != want {
		t.Errorf("%s limits = %+v, want %+v", name, got, want)
	}
}
