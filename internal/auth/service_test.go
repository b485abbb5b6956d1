package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawnquote/internal/types"
)

// --- Mocks ---

type mockKeyRepo struct {
	key       *types.APIKey
	err       error
	touchedID string
}

func (m *mockKeyRepo) GetAPIKeyByPrefix(ctx context.Context, prefix string) (*types.APIKey, error) {
	return m.key, m.err
}

func (m *mockKeyRepo) TouchAPIKey(ctx context.Context, keyID string) {
	m.touchedID = keyID
}

type mockOrgRepo struct {
	org *types.Organization
	err error
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id string) (*types.Organization, error) {
	return m.org, m.err
}

type mockHasher struct {
	compareErr error
}

func (m *mockHasher) CompareHashAndKey(hash, key string) error { return m.compareErr }
func (m *mockHasher) GenerateFromKey(key string) (string, error) {
	return "$2a$12$fakehash", nil
}

const validKey = "lq_live_" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func activeKey() *types.APIKey {
	return &types.APIKey{
		ID:             "key_1",
		OrganizationID: "org_1",
		KeyPrefix:      "lq_live_01234567",
		KeyHash:        "$2a$12$storedhash",
	}
}

func activeOrg() *types.Organization {
	return &types.Organization{ID: "org_1", Plan: types.PlanStarter}
}

// --- Authenticate Tests ---

func TestAuthenticate_Success(t *testing.T) {
	keys := &mockKeyRepo{key: activeKey()}
	orgs := &mockOrgRepo{org: activeOrg()}
	svc := NewService(keys, orgs, &mockHasher{}, nil)

	actor, err := svc.Authenticate(context.Background(), validKey)
	require.NoError(t, err)
	assert.Equal(t, "key_1", actor.ID)
	assert.Equal(t, types.ActorTypeAPIKey, actor.Type)
	assert.Equal(t, "org_1", actor.OrganizationID)
	assert.Equal(t, "key_1", keys.touchedID)
}

func TestAuthenticate_MalformedKey(t *testing.T) {
	svc := NewService(&mockKeyRepo{}, &mockOrgRepo{}, &mockHasher{}, nil)

	for _, key := range []string{
		"",
		"sk_live_abc",
		"lq_live_tooshort",
		validKey + "extra",
	} {
		_, err := svc.Authenticate(context.Background(), key)
		require.Error(t, err, "key %q", key)

		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeAuthKeyInvalid, appErr.Code)
	}
}

func TestAuthenticate_UnknownPrefix(t *testing.T) {
	keys := &mockKeyRepo{err: types.NewAppError(types.ErrCodeAuthKeyInvalid, "api key not recognized", nil)}
	svc := NewService(keys, &mockOrgRepo{}, &mockHasher{}, nil)

	_, err := svc.Authenticate(context.Background(), validKey)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthKeyInvalid, appErr.Code)
}

func TestAuthenticate_HashMismatch(t *testing.T) {
	keys := &mockKeyRepo{key: activeKey()}
	svc := NewService(keys, &mockOrgRepo{}, &mockHasher{compareErr: errors.New("mismatch")}, nil)

	_, err := svc.Authenticate(context.Background(), validKey)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthKeyInvalid, appErr.Code)
	assert.Empty(t, keys.touchedID)
}

func TestAuthenticate_RevokedKey(t *testing.T) {
	revoked := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	key := activeKey()
	key.RevokedAt = &revoked

	svc := NewService(&mockKeyRepo{key: key}, &mockOrgRepo{}, &mockHasher{}, nil)

	_, err := svc.Authenticate(context.Background(), validKey)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthKeyRevoked, appErr.Code)
}

func TestAuthenticate_DeletedOrg(t *testing.T) {
	deleted := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	org := activeOrg()
	org.DeletedAt = &deleted

	svc := NewService(&mockKeyRepo{key: activeKey()}, &mockOrgRepo{org: org}, &mockHasher{}, nil)

	_, err := svc.Authenticate(context.Background(), validKey)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeAuthOrgDeleted, appErr.Code)
}

// --- GenerateKey Tests ---

func TestGenerateKey_LiveMode(t *testing.T) {
	svc := NewService(&mockKeyRepo{}, &mockOrgRepo{}, &mockHasher{}, nil)

	apiKey, prefix, hash, err := svc.GenerateKey(false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(apiKey, "lq_live_"))
	assert.Len(t, apiKey, len("lq_live_")+64)
	assert.True(t, strings.HasPrefix(apiKey, prefix))
	assert.Len(t, prefix, len("lq_live_")+8)
	assert.NotEmpty(t, hash)
	assert.False(t, types.IsTestKey(apiKey))
}

func TestGenerateKey_TestMode(t *testing.T) {
	svc := NewService(&mockKeyRepo{}, &mockOrgRepo{}, &mockHasher{}, nil)

	apiKey, prefix, _, err := svc.GenerateKey(true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(apiKey, "lq_test_"))
	assert.True(t, strings.HasPrefix(prefix, "lq_test_"))
	assert.True(t, types.IsTestKey(apiKey))
}

func TestGenerateKey_RoundTripsThroughPrefix(t *testing.T) {
	svc := NewService(&mockKeyRepo{}, &mockOrgRepo{}, &mockHasher{}, nil)

	apiKey, prefix, _, err := svc.GenerateKey(false)
	require.NoError(t, err)

	derived, err := keyPrefix(apiKey)
	require.NoError(t, err)
	assert.Equal(t, prefix, derived)
}

// --- bcryptHasher Tests ---

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := &bcryptHasher{}

	hash, err := h.GenerateFromKey("some-secret")
	require.NoError(t, err)
	require.NoError(t, h.CompareHashAndKey(hash, "some-secret"))
	require.Error(t, h.CompareHashAndKey(hash, "other-secret"))
}
