package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"

	"github.com/lborres/kalma/core"
)

const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
)

type Config struct {
	HTTPAddr string
	BasePath string
	LogMode  string

	StoreDriver        string
	FirestoreProjectID string
	FirebaseAdminKey   string // service-account JSON, optional
	DatabaseURL        string

	RedisAddr string

	StripeSecretKey     string
	StripeWebhookSecret string
	Billing             core.BillingConfig

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the configuration from the environment.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		BasePath: getEnv("BASE_PATH", "/api"),
		LogMode:  getEnv("LOG_MODE", "development"),

		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverFirestore)),
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		FirebaseAdminKey:   getEnv("FIREBASE_ADMIN_KEY", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		Billing: core.BillingConfig{
			PriceMonthly: getEnv("STRIPE_PRICE_MONTHLY", ""),
			PriceYearly:  getEnv("STRIPE_PRICE_YEARLY", ""),
			BaseURL:      getEnv("APP_BASE_URL", ""),
		},
	}

	var err error
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverFirestore:
		if c.FirestoreProjectID == "" && c.FirebaseAdminKey == "" {
			return fmt.Errorf("%w - FIRESTORE_PROJECT_ID or FIREBASE_ADMIN_KEY is required", core.ErrStoreConfigIncomplete)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w - DATABASE_URL is required", core.ErrStoreConfigIncomplete)
		}
	default:
		return fmt.Errorf("%w: %q", core.ErrStoreDriverUnknown, c.StoreDriver)
	}
	return nil
}

// FirestoreProject returns the project to open. Without FIRESTORE_PROJECT_ID
// the client reads project_id from the service-account key.
func (c *Config) FirestoreProject() string {
	if c.FirestoreProjectID != "" {
		return c.FirestoreProjectID
	}
	return firestore.DetectProjectID
}

// BillingEnabled reports whether a payment provider key is present
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
