// Package config provides configuration management for centerhub.
//
// Configuration is loaded once at startup and remains immutable during
// runtime for thread-safety.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. External .env file in the working directory
//  3. Embedded .env file (fallback, included in binary)
//  4. Hard-coded defaults (lowest priority)
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// embeddedEnv contains the .env file embedded at build time.
//
// This allows the binary to work standalone without an external .env file.
//
//go:embed .env
var embeddedEnv string

// DefaultSpreadsheetID is the sheet shown until a user points the dashboard elsewhere.
const DefaultSpreadsheetID = "1Qy8XewQZHiByRdAe1Zq0m0AxuOtRy1mwt7kN7eME7p8"

// Settings backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// Spreadsheet source
	SpreadsheetID string        // Default sheet id when none is stored
	SheetBaseURL  string        // Document root for export and edit links
	HTTPTimeout   time.Duration // Overall timeout for one export download

	// Settings persistence
	SettingsBackend string // "file" or "sqlite"
	SettingsPath    string // File or database path

	// Header recognition rules; empty means the built-in table
	HeaderRulesPath string

	// HTTP API
	ListenAddr string

	// Timing
	RefreshInterval time.Duration // Periodic refresh; 0 disables it
	NoticeDuration  time.Duration // How long a notice stays current

	// Telegram configuration (optional)
	TelegramBotToken string
	TelegramChatID   string

	// Logging
	DebugMode bool
	LogLevel  string
}

// LoadConfig loads configuration from environment variables with defaults.
//
// Loading process:
//  1. Read the external .env file, if any, filling variables that are unset
//  2. Parse the embedded .env file and fill whatever is still unset
//  3. Read environment variables, applying defaults for missing values
//  4. Validate the result
func LoadConfig() (*Config, error) {
	if external, err := godotenv.Read(); err == nil {
		setUnset(external)
	}
	if embedded, err := godotenv.Unmarshal(embeddedEnv); err == nil {
		setUnset(embedded)
	}

	backend := strings.ToLower(getEnvOrDefault("SETTINGS_BACKEND", BackendFile))
	cfg := &Config{
		SpreadsheetID: getEnvOrDefault("SPREADSHEET_ID", DefaultSpreadsheetID),
		SheetBaseURL:  getEnvOrDefault("SHEET_BASE_URL", "https://docs.google.com/spreadsheets/d/"),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		SettingsBackend: backend,
		SettingsPath:    getEnvOrDefault("SETTINGS_PATH", defaultSettingsPath(backend)),

		HeaderRulesPath: os.Getenv("HEADER_RULES_PATH"),

		ListenAddr: getEnvOrDefault("LISTEN_ADDR", ":8080"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),
		NoticeDuration:  getEnvDuration("NOTICE_DURATION", 3*time.Second),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),

		DebugMode: getEnvBool("DEBUG_MODE", false),
		LogLevel:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and values are sensible.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		return fmt.Errorf("SPREADSHEET_ID cannot be empty")
	}
	if c.SheetBaseURL == "" {
		return fmt.Errorf("SHEET_BASE_URL cannot be empty")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative, got %v", c.HTTPTimeout)
	}

	switch c.SettingsBackend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("SETTINGS_BACKEND must be %q or %q, got %q", BackendFile, BackendSQLite, c.SettingsBackend)
	}
	if c.SettingsPath == "" {
		return fmt.Errorf("SETTINGS_PATH cannot be empty")
	}

	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative, got %v", c.RefreshInterval)
	}
	if c.NoticeDuration <= 0 {
		return fmt.Errorf("NOTICE_DURATION must be positive, got %v", c.NoticeDuration)
	}

	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// TelegramEnabled reports whether the Telegram surface is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func defaultSettingsPath(backend string) string {
	if backend == BackendSQLite {
		return "settings.db"
	}
	return "settings.csv"
}

// Helper functions for environment variable parsing

// setUnset exports every pair whose key has no value in the environment yet
func setUnset(env map[string]string) {
	for k, v := range env {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool accepts anything strconv.ParseBool does; invalid values use the default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
