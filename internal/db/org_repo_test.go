package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lawnquote/internal/types"
)

func TestOrgRepository_GetByID_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewOrgRepository(db, nil)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = "org_1"
			*dest[1].(*string) = "Green Horizons Landscaping"
			*dest[2].(*string) = "billing@greenhorizons.example"
			*dest[3].(*types.PlanTier) = types.PlanStarter
			*dest[4].(*string) = "cus_abc123"
			*dest[5].(*time.Time) = now
			*dest[6].(*time.Time) = now
			*dest[7].(**time.Time) = nil
			return nil
		},
	}

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"org_1"}).Return(row)

	org, err := repo.GetByID(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, "Green Horizons Landscaping", org.Name)
	assert.Equal(t, types.PlanStarter, org.Plan)
	assert.Equal(t, "cus_abc123", org.StripeCustomerID)
	assert.Nil(t, org.DeletedAt)
}

func TestOrgRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewOrgRepository(db, nil)
	ctx := context.Background()

	row := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"org_missing"}).Return(row)

	_, err := repo.GetByID(ctx, "org_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundOrg, appErr.Code)
}

func TestOrgRepository_UpdatePlan_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewOrgRepository(db, nil)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := repo.UpdatePlan(context.Background(), "org_1", types.PlanPro)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestOrgRepository_UpdateStripeCustomerID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewOrgRepository(db, nil)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.UpdateStripeCustomerID(context.Background(), "org_missing", "cus_new")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundOrg, appErr.Code)
}

func TestOrgRepository_GetAPIKeyByPrefix_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewOrgRepository(db, nil)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = "key_1"
			*dest[1].(*string) = "org_1"
			*dest[2].(*string) = "ci key"
			*dest[3].(*string) = "lq_live_abc12345"
			*dest[4].(*string) = "$2a$10$hash"
			*dest[5].(**time.Time) = nil
			*dest[6].(**time.Time) = nil
			*dest[7].(*time.Time) = now
			return nil
		},
	}

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"lq_live_abc12345"}).Return(row)

	key, err := repo.GetAPIKeyByPrefix(ctx, "lq_live_abc12345")
	require.NoError(t, err)
	assert.Equal(t, "org_1", key.OrganizationID)
	assert.Equal(t, "$2a$10$hash", key.KeyHash)
	assert.Nil(t, key.RevokedAt)
}

func TestOrgRepository_GetAPIKeyByPrefix_Unknown(t *testing.T) {
	db := new(mockDBTX)
	repo := NewOrgRepository(db, nil)
	ctx := context.Background()

	row := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"lq_live_nope"}).Return(row)

	_, err := repo.GetAPIKeyByPrefix(ctx, "lq_live_nope")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthKeyInvalid, appErr.Code)
}
