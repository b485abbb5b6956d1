// Package core provides the API chassis for the LawnQuote service. It
// creates a chi router and enforces cross-cutting concerns -- security,
// logging, request correlation, and error handling -- before requests reach
// domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lawnquote/internal/config"
	"lawnquote/internal/types"
)

// Authenticator resolves a bearer API key into an Actor. Implementations
// live outside core (internal/auth) so the chassis stays free of storage
// concerns.
type Authenticator interface {
	// Authenticate validates the presented API key and returns the Actor it
	// belongs to. Returns an AppError with an auth_* code on failure.
	Authenticate(ctx context.Context, apiKey string) (types.Actor, error)
}

// RouteRegistrar mounts a group of domain handler routes on a chi router.
// The application entry point populates Server.V1RouteRegistrars with these;
// the indirection avoids import cycles between core and handler packages.
type RouteRegistrar func(chi.Router)

// Server encapsulates all dependencies for the LawnQuote API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config        *config.Config
	Logger        *slog.Logger
	Validator     *Validator
	Authenticator Authenticator

	// HealthProbes are checked concurrently by the /health endpoint.
	HealthProbes []HealthProbe

	// V1RouteRegistrars hold the domain routes mounted under /v1.
	V1RouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting. It performs a fail-fast check on critical
// dependencies; the caller mounts routes afterwards via MountRoutes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration in tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
