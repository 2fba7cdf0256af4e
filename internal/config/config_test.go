package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000/api", cfg.Catalog.BaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.Catalog.AuthBaseURL)
	assert.Equal(t, "https://api.perplexity.ai", cfg.Perplexity.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "missing_taxonomy.jsonl", cfg.Taxonomy.MissingLogPath)
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "leads.json", cfg.Batch.LeadsFile)
	assert.InDelta(t, 0.5, cfg.Batch.LeadsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.Batch.MaxRetries)
	assert.Equal(t, "ingest.db", cfg.Store.Path)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  leads_per_second: 2
catalog:
  entity_type_id: tool-type-1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 2.0, cfg.Batch.LeadsPerSecond, 0.001)
	assert.Equal(t, "tool-type-1", cfg.Catalog.EntityTypeID)
	// Defaults still apply for unset values
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
store:
  path: from-file.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("INGEST_LOG_LEVEL", "warn")
	t.Setenv("INGEST_STORE_PATH", "from-env.db")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from-env.db", cfg.Store.Path)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("INGEST_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := &Config{}
	cfg.Catalog.Email = "ingest@example.com"
	cfg.Catalog.Password = "secret"
	cfg.Catalog.EntityTypeID = "tool-type-1"
	cfg.Perplexity.Key = "pplx-test"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := &Config{}
	cfg.Catalog.EntityTypeID = "tool-type-1"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email and password")
}

func TestValidate_MissingEntityType(t *testing.T) {
	cfg := &Config{}
	cfg.Catalog.Email = "ingest@example.com"
	cfg.Catalog.Password = "secret"
	cfg.Perplexity.Key = "pplx-test"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entity_type_id")
}

func TestValidate_MissingPerplexityKey(t *testing.T) {
	cfg := &Config{}
	cfg.Catalog.Email = "ingest@example.com"
	cfg.Catalog.Password = "secret"
	cfg.Catalog.EntityTypeID = "tool-type-1"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity key")
}
