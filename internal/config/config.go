// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	HTTP      HTTPConfig
	Store     StoreConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Addr string // listen address, e.g. ":3000"
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Backend     string // memory | sqlite | postgres
	SQLitePath  string // SQLite database file path
	DatabaseURL string // Postgres connection string
}

// AuthConfig contains login/registration rate limiting settings.
type AuthConfig struct {
	RatePerSec float64 // allowed login/register attempts per second
	Burst      int     // burst capacity
}

// TelemetryConfig contains trace export settings.
type TelemetryConfig struct {
	OTLPEndpoint string // host:port of an OTLP/HTTP collector; empty disables tracing
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	ratePerSec, err := getEnvFloat("AUTH_RATE_PER_SEC", 5)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("AUTH_BURST", 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":3000"),
		},
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", BackendMemory),
			SQLitePath:  getEnv("SQLITE_PATH", "lendkeeper.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			RatePerSec: ratePerSec,
			Burst:      burst,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
		},
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// getEnvFloat retrieves an environment variable as a float with a default fallback.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %w", key, err)
		}
		return f, nil
	}
	return defaultVal, nil
}
