// Package config loads runtime configuration from the environment,
// with optional .env file support for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	// Storage backend: "memory", "sqlite" or "postgres".
	StoreBackend string
	SQLitePath   string
	PostgresDSN  string

	// AI collaborator.
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	// Engine tuning.
	MaxSteps      int
	EffectTimeout time.Duration

	// Editor history tuning.
	HistoryLimit    int
	HistoryDebounce time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend:    getEnv("CHATFLOW_STORE", "memory"),
		SQLitePath:      getEnv("CHATFLOW_SQLITE_PATH", "chatflow.db"),
		PostgresDSN:     os.Getenv("CHATFLOW_POSTGRES_DSN"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MaxSteps:        getEnvInt("CHATFLOW_MAX_STEPS", 100),
		EffectTimeout:   getEnvDuration("CHATFLOW_EFFECT_TIMEOUT", 10*time.Second),
		HistoryLimit:    getEnvInt("CHATFLOW_HISTORY_LIMIT", 50),
		HistoryDebounce: getEnvDuration("CHATFLOW_HISTORY_DEBOUNCE", 500*time.Millisecond),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
