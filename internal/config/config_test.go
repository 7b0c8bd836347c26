package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CALH2O_ML_TYPE", "CALH2O_MODEL", "GOOGLE_PROJECT_ID", "GOOGLE_LOCATION",
		"GOOGLE_CREDENTIALS_FILE", "GEMINI_API_KEY", "CALH2O_FIXTURES", "CALH2O_DB_DRIVER",
		"CALH2O_DB_PATH", "DATABASE_URL", "LOG_LEVEL", "CALH2O_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigJSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{
		"server": {"port": "9090", "request_timeout_seconds": 60, "rate_limit": 5},
		"database": {"driver": "sqlite", "path": "/tmp/x.db"},
		"ml": {"type": "fixture", "fixture": {"path": "fixtures.json"}}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.RequestTimeout())
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "fixture", cfg.ML.Type)
	assert.Equal(t, "gemini-2.0-flash", cfg.ML.Model)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  port: "7070"
ml:
  type: gemini
  model: gemini-2.5-flash
  gemini:
    api_key: secret
log:
  level: debug
  pretty: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.ML.Type)
	assert.Equal(t, "gemini-2.5-flash", cfg.ML.Model)
	assert.Equal(t, "secret", cfg.ML.Gemini.APIKey)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 540*time.Second, cfg.Server.RequestTimeout())
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_PROJECT_ID", "calh2o")
	t.Setenv("PORT", "3000")
	t.Setenv("CALH2O_DB_DRIVER", "firestore")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "vertex", cfg.ML.Type)
	assert.Equal(t, "us-central1", cfg.ML.Vertex.Location)
	assert.Equal(t, "firestore", cfg.Database.Driver)
	assert.Equal(t, "calh2o", cfg.Database.ProjectID, "firestore falls back to the vertex project")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALH2O_ML_TYPE", "gemini")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("CALH2O_REQUEST_TIMEOUT", "30")
	path := writeFile(t, "config.json", `{"ml": {"type": "fixture", "fixture": {"path": "f.json"}}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.ML.Type)
	assert.Equal(t, "from-env", cfg.ML.Gemini.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout())
}

func TestLoadConfigDebugForcesDebugLevel(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  debug: true
log:
  level: warn
ml:
  type: fixture
  fixture:
    path: fixtures.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown ml type", func(c *Config) { c.ML.Type = "local" }, "unsupported ml type"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"vertex without project", func(c *Config) { c.ML.Vertex.ProjectID = "" }, "project_id"},
		{"gemini without key", func(c *Config) { c.ML.Type = "gemini" }, "api_key"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ML.Vertex.ProjectID = "p"
			cfg.setDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"server": `)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
