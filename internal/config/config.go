// Package config loads server settings from the environment. Variables use
// the BISTRO_ prefix; the unprefixed names (LOG_LEVEL, DATABASE_URL, ...)
// are accepted as fallbacks. A .env file, when present, is loaded first and
// never overrides variables already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/pricing"
)

const prefix = "bistro"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const minSecretLength = 16

type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigin      string        `envconfig:"CORS_ORIGIN" default:"*"`

	StorageDriver string `envconfig:"STORAGE" default:"sqlite"`
	SQLitePath    string `envconfig:"DB_PATH" default:"./data/bistro.db"`
	PostgresURL   string `envconfig:"DATABASE_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	DeliveryFee decimal.Decimal `envconfig:"DELIVERY_FEE" default:"3.99"`
	PickupFee   decimal.Decimal `envconfig:"PICKUP_FEE" default:"0"`
	TaxRate     decimal.Decimal `envconfig:"TAX_RATE" default:"0.08"`

	// SeedDemoMenu fills an empty catalog with the demo menu on startup.
	SeedDemoMenu bool `envconfig:"SEED_DEMO_MENU" default:"false"`
}

// Load reads the optional env files (".env" when none are given), then the
// environment, and validates the result.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: DB_PATH is required for sqlite storage")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return errors.New("config: DATABASE_URL is required for postgres storage")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if err := c.Pricing().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Pricing returns the fee and tax settings.
func (c *Config) Pricing() pricing.Config {
	return pricing.Config{
		DeliveryFee: c.DeliveryFee,
		PickupFee:   c.PickupFee,
		TaxRate:     c.TaxRate,
	}
}
