// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultMaxBodyBytes is the request body limit when MAX_BODY_BYTES is unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// StoreDriver selects the document store: "postgres" (default) or "sqlite".
	StoreDriver string

	// DatabaseURL is the Postgres connection string. Required when StoreDriver is postgres.
	DatabaseURL string

	// SQLitePath is the database file used by the sqlite driver. Defaults to "tracker.db".
	SQLitePath string

	// JWTSecret is the HS256 key bearer tokens are verified with. Required.
	JWTSecret []byte

	// WebhookSecret is the HMAC key of payment webhooks. Required.
	WebhookSecret []byte

	// PublicBaseURL prefixes share links, e.g. "https://tracker.example.com".
	PublicBaseURL string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// RequirePremiumSharing restricts POST /share to premium plans.
	RequirePremiumSharing bool

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		SQLitePath:    getEnv("SQLITE_PATH", "tracker.db"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.StoreDriver)
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", strconv.FormatInt(DefaultMaxBodyBytes, 10)), 10, 64)
	if err != nil || maxBody <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be a positive integer")
	}
	cfg.MaxBodyBytes = maxBody

	cfg.RequirePremiumSharing, err = strconv.ParseBool(getEnv("REQUIRE_PREMIUM_SHARING", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("REQUIRE_PREMIUM_SHARING must be a boolean: %w", err)
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.StoreDriver == DriverPostgres {
		missing = append(missing, "DATABASE_URL")
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = []byte(v)
	} else {
		missing = append(missing, "JWT_SECRET")
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = []byte(v)
	} else {
		missing = append(missing, "WEBHOOK_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
