// Package config loads and validates application configuration.
//
// Values are layered, later sources winning: built-in defaults, an optional
// YAML file named by CONFIG_FILE, a .env file (ENV_FILE, default ".env"),
// and finally the process environment. The .env file never overrides a
// variable that is already set in the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// defaultMaxBodyBytes caps request bodies at 1 MiB.
const defaultMaxBodyBytes = 1 << 20

// Config holds all configuration values for the API server.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// DatabaseDriver selects the storage backend: "postgres" or "sqlite".
	// Defaults to "postgres".
	DatabaseDriver string `yaml:"database_driver"`

	// DatabaseURL is the Postgres connection string or the SQLite DSN. Required.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `yaml:"cors_origins"`

	// MaxBodyBytes limits request body sizes. Defaults to 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// Load builds a Config from defaults, the optional YAML file, the .env file,
// and the environment. Returns an error listing any required values that are
// missing or invalid.
func Load() (Config, error) {
	cfg := Config{
		Port:           "8080",
		DatabaseDriver: DriverPostgres,
		LogLevel:       "info",
		CORSOrigins:    []string{"http://localhost:5173"},
		MaxBodyBytes:   defaultMaxBodyBytes,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	var problems []string

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			problems = append(problems, "MAX_BODY_BYTES must be a positive integer")
		} else {
			cfg.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, "AUTO_MIGRATE must be a boolean")
		} else {
			cfg.AutoMigrate = b
		}
	}

	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("DATABASE_DRIVER %q is not one of postgres, sqlite", cfg.DatabaseDriver))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// loadYAML overlays the values present in the YAML file at path onto cfg.
func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
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
