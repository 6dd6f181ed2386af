package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("RG_TEST_KEY", "from-env")

	assert.Equal(t, "key: from-env", expandEnv("key: ${RG_TEST_KEY}"))
	assert.Equal(t, "key: from-env", expandEnv("key: ${RG_TEST_KEY:ignored}"))
	assert.Equal(t, "key: fallback", expandEnv("key: ${RG_TEST_UNSET_KEY:fallback}"))
	assert.Equal(t, "key: ", expandEnv("key: ${RG_TEST_UNSET_KEY:}"))
	assert.Equal(t, "key: ${RG_TEST_UNSET_KEY}", expandEnv("key: ${RG_TEST_UNSET_KEY}"))
}

func TestLoadFromEmptyDirUsesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, int64(4*1024*1024), cfg.Server.HTTP.MaxUploadBytes)
	assert.Equal(t, 8*time.Second, cfg.Images.FetchTimeout)
	assert.Equal(t, "Artifex", cfg.Images.Placeholder.Wordmark)
	assert.Equal(t, "repair-guide:inflight:", cfg.Session.KeyPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Session.GuardTTL)
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.Images.Search.ProxyURL)
	assert.False(t, cfg.Cache.Redis.Enabled)
}

func TestLoadFromMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "staging")
	t.Setenv("RG_TEST_MODEL_KEY", "model-key")
	t.Setenv("RG_TEST_IDENTITY_SECRET", "id-secret")

	base := `
server:
  http:
    port: 9090
llm:
  api_key: ${RG_TEST_MODEL_KEY:}
  plan_model: base-model
identity:
  domain: tenant.example
  secret: ${RG_TEST_IDENTITY_SECRET:}
images:
  search:
    api_key: ${RG_TEST_SEARCH_KEY:}
`
	staging := `
llm:
  plan_model: staging-model
identity:
  client_id: client-1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(staging), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
	assert.Equal(t, "staging-model", cfg.LLM.PlanModel)
	assert.True(t, cfg.LLM.Live())
	assert.False(t, cfg.Images.Search.Enabled())
	assert.True(t, cfg.Identity.Configured())
	assert.Equal(t, "http://127.0.0.1:9090/api", cfg.Images.Search.ProxyURL)
}

func TestIdentityConfiguredRequiresSecret(t *testing.T) {
	cfg := IdentityConfig{Domain: "tenant.example", ClientID: "client-1"}
	assert.False(t, cfg.Configured())

	cfg.Secret = "  "
	assert.False(t, cfg.Configured())

	cfg.Secret = "id-secret"
	assert.True(t, cfg.Configured())
}

func TestLoadFromRejectsBrokenYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadFrom(dir)
	assert.Error(t, err)
}
