package core

import (
	"net/http"
	"strings"

	"lawnquote/internal/types"
)

// AuthMiddleware resolves the bearer API key on /v1 routes into an Actor and
// injects it into the request context. Routes outside /v1 (health) are
// public and pass through untouched.
//
// If no Authenticator is configured (unit tests exercising individual
// handlers), the middleware passes through; handlers then fail their own
// actor lookup with a 401.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/") {
			next.ServeHTTP(w, r)
			return
		}
		if s.Authenticator == nil {
			next.ServeHTTP(w, r)
			return
		}

		token, err := bearerToken(r)
		if err != nil {
			Error(w, r, err)
			return
		}

		actor, err := s.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			Error(w, r, err)
			return
		}

		ctx := types.WithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Authorization header is required",
			nil,
		)
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", types.NewAppError(
			types.ErrCodeAuthKeyInvalid,
			"Authorization header must use the Bearer scheme",
			nil,
		)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", types.NewAppError(
			types.ErrCodeAuthKeyMissing,
			"Bearer token is empty",
			nil,
		)
	}
	return token, nil
}
