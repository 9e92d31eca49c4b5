package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key LoadConfig reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SPREADSHEET_ID", "SHEET_BASE_URL", "HTTP_TIMEOUT", "SETTINGS_BACKEND",
		"SETTINGS_PATH", "HEADER_RULES_PATH", "LISTEN_ADDR", "REFRESH_INTERVAL",
		"NOTICE_DURATION", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DEBUG_MODE", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultSpreadsheetID, cfg.SpreadsheetID)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/", cfg.SheetBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, BackendFile, cfg.SettingsBackend)
	assert.Equal(t, "settings.csv", cfg.SettingsPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Equal(t, 3*time.Second, cfg.NoticeDuration)
	assert.False(t, cfg.DebugMode)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPREADSHEET_ID", "custom-sheet")
	t.Setenv("SETTINGS_BACKEND", "SQLite")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("NOTICE_DURATION", "1500ms")
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "custom-sheet", cfg.SpreadsheetID)
	assert.Equal(t, BackendSQLite, cfg.SettingsBackend)
	assert.Equal(t, "settings.db", cfg.SettingsPath)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.NoticeDuration)
	assert.True(t, cfg.DebugMode)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigExternalEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SPREADSHEET_ID=external-sheet\nLISTEN_ADDR=:9090\nNOTICE_DURATION=5s\n"), 0o600))
	t.Chdir(dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "external-sheet", cfg.SpreadsheetID)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.NoticeDuration)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout, "embedded value fills the rest")

	t.Setenv("SPREADSHEET_ID", "from-env")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SpreadsheetID)
}

func TestLoadConfigInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("SETTINGS_BACKEND", "redis")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue string
		expected     string
	}{
		{name: "env var set", envValue: "custom", defaultValue: "default", expected: "custom"},
		{name: "env var not set", envValue: "", defaultValue: "default", expected: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CENTERHUB_TEST_VAR", tt.envValue)
			assert.Equal(t, tt.expected, getEnvOrDefault("CENTERHUB_TEST_VAR", tt.defaultValue))
		})
	}
}

func TestGetEnvDurationAndBool(t *testing.T) {
	t.Setenv("CENTERHUB_TEST_DUR", "notaduration")
	assert.Equal(t, time.Second, getEnvDuration("CENTERHUB_TEST_DUR", time.Second))

	t.Setenv("CENTERHUB_TEST_DUR", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("CENTERHUB_TEST_DUR", time.Second))

	t.Setenv("CENTERHUB_TEST_BOOL", "1")
	assert.True(t, getEnvBool("CENTERHUB_TEST_BOOL", false))

	t.Setenv("CENTERHUB_TEST_BOOL", "maybe")
	assert.True(t, getEnvBool("CENTERHUB_TEST_BOOL", true))
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SpreadsheetID:   "id",
			SheetBaseURL:    "https://example.com/d/",
			SettingsBackend: BackendFile,
			SettingsPath:    "settings.csv",
			NoticeDuration:  3 * time.Second,
			LogLevel:        "info",
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		expectErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing spreadsheet id", mutate: func(c *Config) { c.SpreadsheetID = "  " }, expectErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.SettingsBackend = "mongo" }, expectErr: true},
		{name: "negative refresh", mutate: func(c *Config) { c.RefreshInterval = -time.Second }, expectErr: true},
		{name: "zero notice duration", mutate: func(c *Config) { c.NoticeDuration = 0 }, expectErr: true},
		{name: "token without chat", mutate: func(c *Config) { c.TelegramBotToken = "t" }, expectErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
