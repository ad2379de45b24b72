package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePort(t *testing.T) {
	testCases := []struct {
		raw      string
		expected int
	}{
		{"", DefaultPort},
		{"8080", 8080},
		{" 8080 ", 8080},
		{"0", DefaultPort},
		{"-1", DefaultPort},
		{"65535", 65535},
		{"65536", DefaultPort},
		{"80.5", DefaultPort},
		{"abc", DefaultPort},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParsePort(tc.raw))
		})
	}
}

func TestParseCORSAllowlist(t *testing.T) {
	assert.Equal(t, []string{}, ParseCORSAllowlist(""))
	assert.Equal(t, []string{}, ParseCORSAllowlist(" , ,"))
	assert.Equal(t,
		[]string{"http://localhost:5173", "https://app.example.com"},
		ParseCORSAllowlist(" http://localhost:5173 ,https://app.example.com,,http://localhost:5173"),
	)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Empty(t, cfg.CORS.Allowlist)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 10000, cfg.Cache.L1Size)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Batch.MaxAddresses)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWLIST", "https://a.example.com, https://b.example.com")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("BATCH_WORKERS", "2")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.Allowlist)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, CacheBackendNone, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Batch.Workers)
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "99999")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.App.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
app:
  port: 9090
cors:
  allowlist:
    - https://a.example.com
    - https://a.example.com
cache:
  backend: redis
redis:
  url: redis://cache:6379/1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example.com"}, cfg.CORS.Allowlist)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestLoad_UnknownCacheBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "unknown cache backend")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ADDRESS_VALIDATOR_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("ADDRESS_VALIDATOR_TEST_KEY", "")
	os.Unsetenv("ADDRESS_VALIDATOR_TEST_KEY")

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("ADDRESS_VALIDATOR_TEST_KEY"))
}
