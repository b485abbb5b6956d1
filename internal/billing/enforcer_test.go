package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawnquote/internal/types"
)

type mockOrgLookup struct {
	plan types.PlanTier
	err  error
}

func (m *mockOrgLookup) GetPlan(ctx context.Context, orgID string) (types.PlanTier, error) {
	return m.plan, m.err
}

type mockUsageDB struct {
	quotes  int
	clients int
	items   int
	err     error

	quotesSince time.Time
}

func (m *mockUsageDB) CountQuotesSince(ctx context.Context, orgID string, since time.Time) (int, error) {
	m.quotesSince = since
	return m.quotes, m.err
}

func (m *mockUsageDB) CountClients(ctx context.Context, orgID string) (int, error) {
	return m.clients, m.err
}

func (m *mockUsageDB) CountItems(ctx context.Context, orgID string) (int, error) {
	return m.items, m.err
}

func newTestEnforcer(plan types.PlanTier, usage *mockUsageDB) *usageEnforcerImpl {
	e := NewUsageEnforcer(&mockOrgLookup{plan: plan}, usage, NewStaticPlanRegistry())
	e.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return e
}

func TestCheckLimit_QuotesUnderLimit(t *testing.T) {
	usage := &mockUsageDB{quotes: 4}
	e := newTestEnforcer(types.PlanFree, usage)

	err := e.CheckLimit(context.Background(), "org_1", types.ResourceQuotes, 1)
	require.NoError(t, err)
}

func TestCheckLimit_QuotesAtLimit(t *testing.T) {
	usage := &mockUsageDB{quotes: 5}
	e := newTestEnforcer(types.PlanFree, usage)

	err := e.CheckLimit(context.Background(), "org_1", types.ResourceQuotes, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeLimitQuotes, appErr.Code)
	assert.Equal(t, 5, appErr.Details["current"])
	assert.Equal(t, 5, appErr.Details["limit"])
	assert.Equal(t, "free", appErr.Details["plan"])
}

func TestCheckLimit_QuotesWindowStartsAtMonthStart(t *testing.T) {
	usage := &mockUsageDB{quotes: 0}
	e := newTestEnforcer(types.PlanFree, usage)

	err := e.CheckLimit(context.Background(), "org_1", types.ResourceQuotes, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), usage.quotesSince)
}

func TestCheckLimit_BusinessUnlimitedSkipsCount(t *testing.T) {
	usage := &mockUsageDB{err: errors.New("should not be called")}
	e := newTestEnforcer(types.PlanBusiness, usage)

	require.NoError(t, e.CheckLimit(context.Background(), "org_1", types.ResourceQuotes, 1))
	require.NoError(t, e.CheckLimit(context.Background(), "org_1", types.ResourceClients, 1))
	require.NoError(t, e.CheckLimit(context.Background(), "org_1", types.ResourceItems, 1))
}

func TestCheckLimit_ClientsExceeded(t *testing.T) {
	usage := &mockUsageDB{clients: 10}
	e := newTestEnforcer(types.PlanFree, usage)

	err := e.CheckLimit(context.Background(), "org_1", types.ResourceClients, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeLimitClients, appErr.Code)
}

func TestCheckLimit_ItemsExceeded(t *testing.T) {
	usage := &mockUsageDB{items: 100}
	e := newTestEnforcer(types.PlanStarter, usage)

	err := e.CheckLimit(context.Background(), "org_1", types.ResourceItems, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeLimitItems, appErr.Code)
}

func TestCheckLimit_UnknownResource(t *testing.T) {
	e := newTestEnforcer(types.PlanFree, &mockUsageDB{})

	err := e.CheckLimit(context.Background(), "org_1", types.ResourceType("gadgets"), 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalUnexpected, appErr.Code)
}

func TestCheckLimit_OrgLookupError(t *testing.T) {
	e := NewUsageEnforcer(
		&mockOrgLookup{err: types.NewAppError(types.ErrCodeNotFoundOrg, "organization not found", nil)},
		&mockUsageDB{},
		NewStaticPlanRegistry(),
	)

	err := e.CheckLimit(context.Background(), "org_missing", types.ResourceQuotes, 1)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundOrg, appErr.Code)
}
