// Package main is the entry point for the LawnQuote API server.
//
// It loads configuration, connects the Postgres pool, wires the repositories,
// the pricing-aware quote handlers, usage enforcement, and the Stripe billing
// surface onto the core chassis, then serves HTTP on the configured port.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lawnquote/internal/api/handlers"
	"lawnquote/internal/auth"
	"lawnquote/internal/billing"
	"lawnquote/internal/config"
	"lawnquote/internal/core"
	"lawnquote/internal/db"
	"lawnquote/internal/external"
)

// shutdownGrace is how long in-flight requests get to finish after a
// termination signal.
const shutdownGrace = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("lawnquote API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	// Repositories.
	orgRepo := db.NewOrgRepository(pool, logger)
	assessmentRepo := db.NewAssessmentRepository(pool, logger)
	itemRepo := db.NewItemRepository(pool, logger)
	clientRepo := db.NewClientRepository(pool, logger)
	quoteRepo := db.NewQuoteRepository(pool, logger)

	// Plan limits and usage enforcement.
	planRegistry := billing.NewStaticPlanRegistry()
	usageCounts := db.NewUsageCounts(quoteRepo, clientRepo, itemRepo)
	usageEnforcer := billing.NewUsageEnforcer(orgRepo, usageCounts, planRegistry)

	// Stripe checkout/portal client.
	stripeClient := external.NewStripeClient(
		&http.Client{Timeout: 20 * time.Second},
		orgRepo,
		external.StripeClientConfig{
			SecretKey:  cfg.Billing.StripeSecretKey.Unmask(),
			PriceIDFor: cfg.Billing.PriceIDForTier,
			Logger:     logger,
		},
	)

	// Build the server chassis.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Authenticator = auth.NewService(orgRepo, orgRepo, nil, logger)
	srv.HealthProbes = append(srv.HealthProbes, &db.HealthProbe{Pool: pool})

	// Domain handlers.
	quoteHandler := handlers.NewQuoteHandler(quoteRepo, assessmentRepo, itemRepo, clientRepo, usageEnforcer, srv.Validator, logger)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentRepo, clientRepo, srv.Validator, logger)
	itemHandler := handlers.NewItemHandler(itemRepo, usageEnforcer, srv.Validator, logger)
	clientHandler := handlers.NewClientHandler(clientRepo, usageEnforcer, srv.Validator, logger)
	billingHandler := handlers.NewBillingHandler(stripeClient, orgRepo, planRegistry, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		quoteHandler.RegisterRoutes,
		assessmentHandler.RegisterRoutes,
		itemHandler.RegisterRoutes,
		clientHandler.RegisterRoutes,
		billingHandler.RegisterRoutes,
	)
	srv.MountRoutes()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", shutdownGrace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger builds the process-wide JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
