package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	APIBaseURL  string // pedagogy API origin; /api/v1 is appended by the client
	CORSOrigins string
	AuthJWKSURL string // optional; when set the gateway verifies bearer signatures
	Locale      string
	// Upstream
	HTTPTimeout      time.Duration // 0 disables the per-request deadline
	FetchConcurrency int
	ChatHistoryLimit int
	// Gateway
	TreeIdleTimeout time.Duration // unused trees are evicted after this; 0 keeps them
	// CLI
	SessionFile string
	// Logging
	LogDir      string // empty disables file logging
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug-level logs
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:10000"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		AuthJWKSURL:      getEnv("AUTH_JWKS_URL", ""),
		Locale:           getEnv("LOCALE", "fr"),
		HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", DefaultFetchConcurrency),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", DefaultChatHistoryLimit),
		TreeIdleTimeout:  getEnvDuration("TREE_IDLE_TIMEOUT", 30*time.Minute),
		SessionFile:      getEnv("SESSION_FILE", defaultSessionFile()),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// defaultSessionFile returns ~/.config/cartable/session.yaml, or a relative
// path when no config directory can be determined.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".cartable", "session.yaml")
	}
	return filepath.Join(dir, "cartable", "session.yaml")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when the variable is unset, not a
// number, or negative.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go durations ("45s") and bare seconds ("45").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
