package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration. It is built once at startup
// and passed by injection; nothing in the codebase re-reads the environment
// after Load returns.
type Config struct {
	APIKey      string // OPENAI_API_KEY; empty means AI features are disabled
	Model       string // OPENAI_MODEL
	BaseURL     string // OPENAI_BASE_URL; overrides the provider endpoint
	DataDir     string // JUSTDO_DATA_DIR; holds the task DB and the profile file
	Port        int    // JUSTDO_PORT; HTTP API listen port
	LogLLMCalls bool   // JUSTDO_LLM_LOG_CALLS; log model call events to stderr
}

const (
	defaultModel = "gpt-4o-mini"
	defaultPort  = 8848
)

// Load reads configuration from a .env file (if present) and the environment,
// falling back to defaults for any unset values.
func Load() (Config, error) {
	_ = godotenv.Load() // no .env file is fine

	cfg := Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   envOr("OPENAI_MODEL", defaultModel),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Port:    defaultPort,
	}

	cfg.DataDir = os.Getenv("JUSTDO_DATA_DIR")
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = filepath.Join(home, ".justdo")
	}

	if v := os.Getenv("JUSTDO_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Port = n
		}
	}
	if v := os.Getenv("JUSTDO_LLM_LOG_CALLS"); v != "" {
		cfg.LogLLMCalls, _ = strconv.ParseBool(v)
	}

	return cfg, nil
}

// AIEnabled reports whether a model credential is configured.
func (c Config) AIEnabled() bool {
	return c.APIKey != ""
}

// DBPath returns the location of the task database.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "justdo.db")
}

// ProfilePath returns the location of the user profile document.
func (c Config) ProfilePath() string {
	return filepath.Join(c.DataDir, "profile.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
