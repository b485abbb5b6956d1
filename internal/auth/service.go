// Package auth implements API key authentication for the LawnQuote API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"lawnquote/internal/types"
)

// bcryptCost is the bcrypt cost factor used for API key hashing.
const bcryptCost = 12

// Key layout: "<mode prefix><64 hex chars>". The stored key_prefix is the
// mode prefix plus the first 8 hex chars, which is enough to find the row;
// the bcrypt hash of the full key proves possession.
const (
	livePrefix     = "lq_live_"
	testPrefix     = "lq_test_"
	prefixHexChars = 8
	secretHexChars = 64
)

// KeyRepo defines the data access methods needed by the Service.
type KeyRepo interface {
	GetAPIKeyByPrefix(ctx context.Context, prefix string) (*types.APIKey, error)
	TouchAPIKey(ctx context.Context, keyID string)
}

// OrgRepo provides organization lookup for tenant checks during auth.
type OrgRepo interface {
	GetByID(ctx context.Context, id string) (*types.Organization, error)
}

// KeyHasher abstracts bcrypt operations for testability.
type KeyHasher interface {
	CompareHashAndKey(hash, key string) error
	GenerateFromKey(key string) (string, error)
}

// bcryptHasher is the production implementation of KeyHasher.
type bcryptHasher struct{}

func (b *bcryptHasher) CompareHashAndKey(hash, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}

func (b *bcryptHasher) GenerateFromKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Service resolves API keys into Actors. It implements core.Authenticator.
type Service struct {
	keys   KeyRepo
	orgs   OrgRepo
	hasher KeyHasher
	logger *slog.Logger
}

// NewService creates the API key authentication service. If hasher is nil,
// the production bcrypt hasher is used.
func NewService(keys KeyRepo, orgs OrgRepo, hasher KeyHasher, logger *slog.Logger) *Service {
	if hasher == nil {
		hasher = &bcryptHasher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{keys: keys, orgs: orgs, hasher: hasher, logger: logger}
}

// Authenticate verifies a presented API key and returns the Actor it
// represents.
//
//  1. Validate the key shape and extract the stored prefix.
//  2. Look up the key row by prefix and verify the bcrypt hash.
//  3. Reject revoked keys and keys belonging to deleted organizations.
//  4. Record last use (best-effort) and build the Actor.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (types.Actor, error) {
	prefix, err := keyPrefix(apiKey)
	if err != nil {
		return types.Actor{}, err
	}

	key, err := s.keys.GetAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		return types.Actor{}, err
	}

	if err := s.hasher.CompareHashAndKey(key.KeyHash, apiKey); err != nil {
		return types.Actor{}, types.NewAppError(types.ErrCodeAuthKeyInvalid, "api key not recognized", nil)
	}

	if key.RevokedAt != nil {
		return types.Actor{}, types.NewAppError(types.ErrCodeAuthKeyRevoked, "api key has been revoked", nil)
	}

	org, err := s.orgs.GetByID(ctx, key.OrganizationID)
	if err != nil {
		return types.Actor{}, err
	}
	if org.DeletedAt != nil {
		return types.Actor{}, types.NewAppError(types.ErrCodeAuthOrgDeleted, "organization has been deleted", nil)
	}

	s.keys.TouchAPIKey(ctx, key.ID)

	return types.Actor{
		ID:             key.ID,
		Type:           types.ActorTypeAPIKey,
		OrganizationID: org.ID,
		Role:           types.RoleMember,
	}, nil
}

// GenerateKey produces a new API key secret, its stored prefix, and its
// bcrypt hash. testMode selects the lq_test_ prefix instead of lq_live_.
func (s *Service) GenerateKey(testMode bool) (apiKey, prefix, hash string, err error) {
	buf := make([]byte, secretHexChars/2)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to generate api key", err)
	}
	mode := livePrefix
	if testMode {
		mode = testPrefix
	}
	apiKey = mode + hex.EncodeToString(buf)
	prefix, err = keyPrefix(apiKey)
	if err != nil {
		return "", "", "", err
	}
	hash, err = s.hasher.GenerateFromKey(apiKey)
	if err != nil {
		return "", "", "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to hash api key", err)
	}
	return apiKey, prefix, hash, nil
}

// keyPrefix validates the key shape and returns the lookup prefix.
func keyPrefix(apiKey string) (string, error) {
	var mode string
	switch {
	case strings.HasPrefix(apiKey, livePrefix):
		mode = livePrefix
	case strings.HasPrefix(apiKey, testPrefix):
		mode = testPrefix
	default:
		return "", types.NewAppError(types.ErrCodeAuthKeyInvalid, "api key format not recognized", nil)
	}
	secret := apiKey[len(mode):]
	if len(secret) != secretHexChars {
		return "", types.NewAppError(types.ErrCodeAuthKeyInvalid, "api key format not recognized", nil)
	}
	return mode + secret[:prefixHexChars], nil
}
