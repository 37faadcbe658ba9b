package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"keydojo/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "memory", cfg.Storage.Adapter)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("KEYDOJO_ENV", "production")
	t.Setenv("KEYDOJO_SERVER_ADDR", ":9999")
	t.Setenv("KEYDOJO_STORAGE_ADAPTER", "file")
	t.Setenv("KEYDOJO_STORAGE_FILE_PATH", "/var/lib/keydojo/snapshots.json")
	t.Setenv("KEYDOJO_SERVER_READ_TIMEOUT", "30s")
	t.Setenv("KEYDOJO_SECURITY_API_KEYS", "alpha, beta")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "file", cfg.Storage.Adapter)
	assert.Equal(t, "/var/lib/keydojo/snapshots.json", cfg.Storage.File.Path)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Security.APIKeys)
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	t.Setenv("KEYDOJO_SERVER_READ_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsUnknownAdapter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Adapter = "cassandra"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adapter must be one of")
}

func TestValidateRejectsBadLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level must be one of")
	assert.Contains(t, err.Error(), "format must be one of")
}

func TestValidateStorageAdapterSpecifics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Adapter = "sql"
	cfg.Storage.SQL.DSN = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Storage.Adapter = "redis"
	cfg.Storage.Redis.Addr = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Storage.Adapter = "file"
	cfg.Storage.File.Path = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRateLimitSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Security.EnableRateLimit = true
	cfg.Security.RateLimit.RequestsPerMinute = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requests_per_minute")
}

func TestValidateAnalyticsSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analytics.Enabled = true
	cfg.Analytics.AggregationInterval = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregation_interval")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keydojo.json")
	body := `{
        "environment": "staging",
        "server": {"address": ":7070"},
        "storage": {"adapter": "file", "file": {"path": "./snapshots.json"}}
    }`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, EnvStaging, cfg.Environment)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "file", cfg.Storage.Adapter)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFileRejectsBadPath(t *testing.T) {
	_, err := LoadFromFile("")
	assert.Error(t, err)

	_, err = LoadFromFile("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestStringRedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.SQL.DSN = "postgres://user:hunter2@db/keydojo"
	cfg.Storage.Redis.Password = "hunter2"
	cfg.Analytics.ExportAPIKey = "hunter2"

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.True(t, strings.Contains(out, "[REDACTED]"))
}

func TestWebhookEventTypes(t *testing.T) {
	w := WebhookConfig{Events: []string{"level_up", " streak_milestone ", ""}}
	types := w.EventTypes()
	assert.Equal(t, []core.EventType{core.EventLevelUp, core.EventStreakMilestone}, types)
}
