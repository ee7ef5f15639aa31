package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.APITimeout)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 1, cfg.PostRateBurst)
	assert.Equal(t, "* * * * *", cfg.Scheduler.Schedule)
	assert.Equal(t, 2, cfg.Scheduler.Concurrency)
}

func TestLoadConfigMissingFileIsFine(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.APITimeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api_base_url: "https://backend.example.com/api"
openrouter_key: "or-key"
post_rate_limit: 10
cache:
  addr: "localhost:6379"
  ttl_seconds: 60
scheduler:
  enabled: true
  account_id: "acct-1"
  concurrency: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "or-key", cfg.OpenRouterKey)
	assert.Equal(t, 10, cfg.PostRateLimit)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, time.Minute, cfg.Cache.TTL())
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "acct-1", cfg.Scheduler.AccountID)
	assert.Equal(t, 4, cfg.Scheduler.Concurrency)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: [broken"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("POSTFLOW_API_URL", "https://env.example.com/api")
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	t.Setenv("POSTFLOW_REDIS_ADDR", "redis:6379")
	t.Setenv("POSTFLOW_POST_RATE_LIMIT", "5")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "env-key", cfg.OpenRouterKey)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.Equal(t, 5, cfg.PostRateLimit)
}

func TestFileWinsOverEnv(t *testing.T) {
	t.Setenv("POSTFLOW_API_URL", "https://env.example.com/api")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`api_base_url: "https://file.example.com/api"`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com/api", cfg.APIBaseURL)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.NoError(t, cfg.Validate())

	cfg.Scheduler.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg.Scheduler.AccountID = "acct-1"
	assert.NoError(t, cfg.Validate())

	cfg.PostRateLimit = -1
	assert.Error(t, cfg.Validate())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := &Config{APIBaseURL: "https://backend.example.com/api", PostRateLimit: 3}
	require.NoError(t, SaveConfig(original, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original.APIBaseURL, loaded.APIBaseURL)
	assert.Equal(t, 3, loaded.PostRateLimit)
}
