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

func TestClientRepository_Create_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewClientRepository(db, nil)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c := &types.Client{
		ID:              "client_1",
		OrganizationID:  "org_1",
		Name:            "Dana Whitfield",
		Email:           "dana@example.com",
		PropertyAddress: "450 Maple Ave",
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Create(context.Background(), c)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestClientRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewClientRepository(db, nil)
	ctx := context.Background()

	row := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"client_x", "org_1"}).Return(row)

	_, err := repo.GetByID(ctx, "client_x", "org_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundClient, appErr.Code)
}

func TestClientRepository_List_CapsLimit(t *testing.T) {
	db := new(mockDBTX)
	repo := NewClientRepository(db, nil)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), []any{"org_1", 100, 0}).
		Return(newMockRows(), nil)

	out, err := repo.List(ctx, "org_1", 500, -3)
	require.NoError(t, err)
	assert.Empty(t, out)
	db.AssertExpectations(t)
}

func TestClientRepository_Delete_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewClientRepository(db, nil)

	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), []any{"client_x", "org_1"}).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := repo.Delete(context.Background(), "client_x", "org_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundClient, appErr.Code)
}
