package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// DefaultModelName is the Gemini model used for extraction and suggestions.
const DefaultModelName = "gemini-2.5-flash"

// Config holds process configuration read from the environment.
type Config struct {
	Port string

	ProjectID         string
	FirestoreDatabase string
	Bucket            string
	AuditDataset      string

	ModelName    string
	GeminiAPIKey string

	RedisURL      string
	RedisPassword string

	StoreBackend       string
	RateLimitPerMinute int
	LogLevel           string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:              getOr(getenv, "PORT", "8080"),
		ProjectID:         getenv("GCP_PROJECT"),
		FirestoreDatabase: getOr(getenv, "FIRESTORE_DATABASE", "(default)"),
		Bucket:            getenv("GCS_BUCKET"),
		AuditDataset:      getenv("BIGQUERY_DATASET"),
		ModelName:         getOr(getenv, "GEMINI_MODEL", DefaultModelName),
		GeminiAPIKey:      getenv("GEMINI_API_KEY"),
		RedisURL:          getenv("REDIS_URL"),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		StoreBackend:      strings.ToLower(getOr(getenv, "STORE_BACKEND", BackendFirestore)),
		LogLevel:          getOr(getenv, "LOG_LEVEL", "info"),
	}

	cfg.Port = strings.TrimPrefix(cfg.Port, ":")

	rl := getOr(getenv, "RATE_LIMIT_PER_MINUTE", "30")
	n, err := strconv.Atoi(rl)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT_PER_MINUTE must be a positive integer, got %q", rl)
	}
	cfg.RateLimitPerMinute = n

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("config: GCP_PROJECT is required for the firestore backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.AuditDataset != "" && c.ProjectID == "" {
		return fmt.Errorf("config: BIGQUERY_DATASET requires GCP_PROJECT")
	}
	return nil
}

// AuditEnabled reports whether extraction runs are recorded in BigQuery.
func (c *Config) AuditEnabled() bool {
	return c.AuditDataset != ""
}

func getOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}
