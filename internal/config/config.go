// Package config defines the global configuration structure for the
// LawnQuote service. Configuration is loaded once at process initialization
// and is immutable thereafter. It follows 12-Factor App principles by
// strictly separating code from configuration.
//
// Values are resolved from the OS environment, with an optional .env file
// for local development. Any missing required value or invalid format causes
// startup to fail immediately (fail fast).
package config

import (
	"time"

	"lawnquote/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the LawnQuote service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"lawnquote-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	Billing  BillingConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server and public URL configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// Public URLs for Stripe redirects (no trailing slash).
	APIExternalURL string `envconfig:"API_EXTERNAL_URL" validate:"required,url"` // e.g., https://api.lawnquote.com
	DashboardURL   string `envconfig:"DASHBOARD_URL" validate:"required,url"`    // e.g., https://app.lawnquote.com
	// RequestTimeout is the soft deadline applied to each request context.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`     // Fail fast when pool exhausted
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"` // Detect dead connections during failover
}

// BillingConfig holds Stripe payment integration credentials and the price
// IDs for each paid plan tier.
type BillingConfig struct {
	StripeSecretKey      SecretString `envconfig:"STRIPE_SECRET_KEY" validate:"required"`
	StripePublishableKey string       `envconfig:"STRIPE_PUBLISHABLE_KEY" validate:"required"`

	PriceIDStarter  string `envconfig:"STRIPE_PRICE_STARTER" validate:"required"`
	PriceIDPro      string `envconfig:"STRIPE_PRICE_PRO" validate:"required"`
	PriceIDBusiness string `envconfig:"STRIPE_PRICE_BUSINESS" validate:"required"`
}

// SecurityConfig holds CORS and transport security settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// PriceIDForTier returns the Stripe price ID configured for the given paid
// tier, or "" for free/unknown tiers.
func (b BillingConfig) PriceIDForTier(tier types.PlanTier) string {
	switch tier {
	case types.PlanStarter:
		return b.PriceIDStarter
	case types.PlanPro:
		return b.PriceIDPro
	case types.PlanBusiness:
		return b.PriceIDBusiness
	default:
		return ""
	}
}

// IsLocal reports whether the service is running in local development mode.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
