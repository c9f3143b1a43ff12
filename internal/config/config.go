package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Temperature is fixed for the lifetime of a session and is not configurable
// through the environment.
const Temperature = 0.7

const (
	defaultBaseURL        = "https://api.anthropic.com"
	defaultModel          = "claude-3-opus-20240229"
	defaultMaxTokens      = 1000
	defaultTimeoutSeconds = 120
)

// defaultModels is the model allow-list used when AVAILABLE_MODELS is unset.
var defaultModels = []string{
	"claude-3-opus-20240229",
	"claude-3-sonnet-20240229",
	"claude-3-haiku-20240307",
}

// Config holds all configuration for the application.
type Config struct {
	APIKey          string
	LLMBaseURL      string
	DefaultModel    string
	AvailableModels []string
	MaxTokens       int
	RequestTimeout  time.Duration
	APIPort         string
	LogLevel        slog.Level
	LogFormat       string
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or project root, it is loaded
// first; environment variables already set take precedence over .env values.
//
// A missing API key is not a load error: the completion client reports it when a
// completion is actually attempted, so the server can start without a credential.
func Load() (*Config, error) {
	// Try current directory first, then walk up to find the project root.
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIKey:          os.Getenv("ANTHROPIC_API_KEY"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", defaultBaseURL),
		DefaultModel:    getEnv("DEFAULT_MODEL", defaultModel),
		AvailableModels: parseModels(os.Getenv("AVAILABLE_MODELS")),
		MaxTokens:       getEnvInt("DEFAULT_MAX_TOKENS", defaultMaxTokens),
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", defaultTimeoutSeconds)) * time.Second,
		APIPort:         getEnv("API_PORT", "8080"),
		LogLevel:        parseLogLevel(os.Getenv("LOG_LEVEL")),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

// parseModels splits a comma-separated model list, trimming whitespace and
// dropping empty entries. An effectively empty value falls back to the built-in
// allow-list.
func parseModels(raw string) []string {
	var models []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		models = make([]string, len(defaultModels))
		copy(models, defaultModels)
	}
	return models
}

// parseLogLevel maps a level name to a slog.Level, defaulting to info.
func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable. Unparsable or non-positive
// values fall back to the default rather than failing the load.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
