package config

import (
	"errors"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/lborres/kalma/core"
)

var envKeys = []string{
	"HTTP_ADDR", "BASE_PATH", "LOG_MODE", "STORE_DRIVER", "FIRESTORE_PROJECT_ID",
	"FIREBASE_ADMIN_KEY", "DATABASE_URL", "REDIS_ADDR", "STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET", "STRIPE_PRICE_MONTHLY", "STRIPE_PRICE_YEARLY",
	"APP_BASE_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	// Arrange
	clearEnv(t)
	t.Setenv("FIRESTORE_PROJECT_ID", "kalma-dev")

	// Act
	cfg, err := FromEnv()

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.BasePath != "/api" || cfg.LogMode != "development" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.StoreDriver != DriverFirestore {
		t.Errorf("StoreDriver = %q, want firestore", cfg.StoreDriver)
	}
	if cfg.RateLimitRPS != 20 || cfg.RateLimitBurst != 40 {
		t.Errorf("rate limit = (%v, %d), want (20, 40)", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.BillingEnabled() {
		t.Error("billing should be disabled without a secret key")
	}
}

func TestFromEnvReadsBilling(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/kalma")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")
	t.Setenv("STRIPE_PRICE_MONTHLY", "price_m")
	t.Setenv("STRIPE_PRICE_YEARLY", "price_y")
	t.Setenv("APP_BASE_URL", "https://kalma.app/")

	cfg, err := FromEnv()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if !cfg.BillingEnabled() {
		t.Error("billing should be enabled")
	}
	want := core.BillingConfig{PriceMonthly: "price_m", PriceYearly: "price_y", BaseURL: "https://kalma.app/"}
	if cfg.Billing != want {
		t.Errorf("Billing = %+v, want %+v", cfg.Billing, want)
	}
}

// Requirement: store configuration problems are reported at startup.
func TestFromEnvValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "unknown driver",
			env:     map[string]string{"STORE_DRIVER": "mongo"},
			wantErr: core.ErrStoreDriverUnknown,
		},
		{
			name:    "firestore without project or key",
			env:     map[string]string{"STORE_DRIVER": "firestore"},
			wantErr: core.ErrStoreConfigIncomplete,
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"STORE_DRIVER": "postgres"},
			wantErr: core.ErrStoreConfigIncomplete,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			clearEnv(t)
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			// Act
			_, err := FromEnv()

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Errorf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestFromEnvRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIRESTORE_PROJECT_ID", "kalma-dev")
	t.Setenv("RATE_LIMIT_BURST", "lots")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for malformed RATE_LIMIT_BURST")
	}
}

// Requirement: the service-account key alone is enough to pick the Firestore project.
func TestFromEnvFirestoreProject(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "explicit project id",
			env:  map[string]string{"FIRESTORE_PROJECT_ID": "kalma-dev", "FIREBASE_ADMIN_KEY": `{"project_id":"other"}`},
			want: "kalma-dev",
		},
		{
			name: "project from admin key",
			env:  map[string]string{"FIREBASE_ADMIN_KEY": `{"type":"service_account","project_id":"kalma-prod"}`},
			want: firestore.DetectProjectID,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			clearEnv(t)
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			// Act
			cfg, err := FromEnv()

			// Assert
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := cfg.FirestoreProject(); got != test.want {
				t.Errorf("FirestoreProject() = %q, want %q", got, test.want)
			}
		})
	}
}
