package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TOODLEDO_CLIENT_ID", "TOODLEDO_CLIENT_SECRET", "TOODLEDO_TOKEN_STORAGE", "TOODLEDO_BASE_URL", "TOODLEDO_SCOPE",
		"INSTRUMENTATION_ENABLED", "METRICS_EXPORTER", "TRACING_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT", "AUDIT_LOGGING_INCLUDE_TITLES"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.False(t, exists)

	assert.Equal(t, "https://api.toodledo.com/3", cfg.Toodledo.BaseURL)
	assert.Equal(t, "prometheus", cfg.Instrumentation.MetricsExporter)
	assert.NoError(t, cfg.Instrumentation.Validate())
	assert.Equal(t, []string{"basic", "tasks", "notes", "folders", "write"}, cfg.Toodledo.Scopes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 60, cfg.Watch.IntervalSeconds)
	assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingCredentials)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[toodledo]
client_id = "app"
client_secret = "s3cret"
base_url = "http://localhost:8080/3/"
scopes = ["basic", "tasks"]

[tokens]
dir = "/var/lib/toodledo"

[logging]
level = "DEBUG"
format = "json"

[instrumentation]
metrics_exporter = "OTLP"
otlp_endpoint = "collector:4318"

[instrumentation.audit]
include_titles = true
`)

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "app", cfg.Toodledo.ClientID)
	assert.Equal(t, "http://localhost:8080/3", cfg.Toodledo.BaseURL)
	assert.Equal(t, []string{"basic", "tasks"}, cfg.Toodledo.Scopes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "otlp", cfg.Instrumentation.MetricsExporter)
	assert.Equal(t, "collector:4318", cfg.Instrumentation.OTLPEndpoint)
	assert.True(t, cfg.Instrumentation.Enabled)
	assert.True(t, cfg.Instrumentation.AuditLogging.Enabled)
	assert.True(t, cfg.Instrumentation.AuditLogging.IncludeTitles)
	assert.NoError(t, cfg.RequireCredentials())

	tokenPath, err := cfg.TokenPath("work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/toodledo", "work.json"), tokenPath)

	_, err = cfg.TokenPath("../../etc/passwd")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[toodledo]
client_id = "from-file"
client_secret = "from-file"
`)
	t.Setenv("TOODLEDO_CLIENT_ID", "from-env")
	t.Setenv("TOODLEDO_SCOPE", "basic tasks,write")
	t.Setenv("TOODLEDO_TOKEN_STORAGE", "/tmp/tokens")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Toodledo.ClientID)
	assert.Equal(t, "from-file", cfg.Toodledo.ClientSecret)
	assert.Equal(t, []string{"basic", "tasks", "write"}, cfg.Toodledo.Scopes)
	assert.Equal(t, "/tmp/tokens", cfg.Tokens.Dir)
	assert.False(t, cfg.Instrumentation.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		errorMsg string
	}{
		{name: "invalid toml", content: "[toodledo\n", errorMsg: "parse config"},
		{name: "unknown key", content: "[toodledo]\nclient = \"x\"\n", errorMsg: "parse config"},
		{name: "relative base url", content: "[toodledo]\nbase_url = \"api/3\"\n", errorMsg: "base_url"},
		{name: "bad log level", content: "[logging]\nlevel = \"loud\"\n", errorMsg: "logging.level"},
		{name: "bad log format", content: "[logging]\nformat = \"xml\"\n", errorMsg: "logging.format"},
		{name: "short watch interval", content: "[watch]\ninterval_seconds = 1\n", errorMsg: "interval_seconds"},
		{name: "unknown exporter", content: "[instrumentation]\nmetrics_exporter = \"statsd\"\n", errorMsg: "instrumentation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, _, _, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOODLEDO_CLIENT_SECRET=dotenv-secret\n"), 0o600))
	t.Setenv("TOODLEDO_CLIENT_SECRET", "")
	require.NoError(t, os.Unsetenv("TOODLEDO_CLIENT_SECRET"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "dotenv-secret", os.Getenv("TOODLEDO_CLIENT_SECRET"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, CreateSample(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, toml.Unmarshal(data, &cfg))
	assert.Equal(t, "https://api.toodledo.com/3", cfg.Toodledo.BaseURL)
	assert.True(t, strings.Contains(string(data), "client_id"))
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitScopes(" a,b  c "))
	assert.Empty(t, splitScopes(""))
}
