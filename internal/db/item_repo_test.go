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

func TestItemRepository_Create_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewItemRepository(db, nil)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	item := &types.LineItem{
		ID:             "item_1",
		OrganizationID: "org_1",
		Name:           "Sod Installation",
		Unit:           "sq ft",
		Cost:           1.25,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Create(context.Background(), item)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestItemRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewItemRepository(db, nil)
	ctx := context.Background()

	row := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"item_x", "org_1"}).Return(row)

	_, err := repo.GetByID(ctx, "item_x", "org_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundItem, appErr.Code)
}

func TestItemRepository_ListByOrg_PreservesOrder(t *testing.T) {
	db := new(mockDBTX)
	repo := NewItemRepository(db, nil)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fill := func(id, name string) func(dest ...any) error {
		return func(dest ...any) error {
			*dest[0].(*string) = id
			*dest[1].(*string) = "org_1"
			*dest[2].(*string) = name
			*dest[3].(*string) = "each"
			*dest[4].(*float64) = 100.0
			*dest[5].(*time.Time) = now
			*dest[6].(*time.Time) = now
			return nil
		}
	}

	db.On("Query", ctx, mock.AnythingOfType("string"), []any{"org_1"}).
		Return(newMockRows(
			fill("item_1", "Sod Installation"),
			fill("item_2", "Overseeding Service"),
			fill("item_3", "Core Aeration"),
		), nil)

	items, err := repo.ListByOrg(ctx, "org_1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Sod Installation", items[0].Name)
	assert.Equal(t, "Overseeding Service", items[1].Name)
	assert.Equal(t, "Core Aeration", items[2].Name)
}

func TestItemRepository_Update_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewItemRepository(db, nil)

	item := &types.LineItem{ID: "item_x", OrganizationID: "org_1", Name: "Mulch"}

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.Update(context.Background(), item)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundItem, appErr.Code)
}

func TestItemRepository_CountByOrg(t *testing.T) {
	db := new(mockDBTX)
	repo := NewItemRepository(db, nil)
	ctx := context.Background()

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int) = 17
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"org_1"}).Return(row)

	count, err := repo.CountByOrg(ctx, "org_1")
	require.NoError(t, err)
	assert.Equal(t, 17, count)
}
