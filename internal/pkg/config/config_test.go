package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL.Std())
	assert.Equal(t, 10*time.Second, cfg.Payment.Timeout.Std())
	assert.Equal(t, 10.0, cfg.RateLimit.PerSecond)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service_name: shopd
http_addr: ":9000"
token_ttl: 30m
payment:
  endpoint: https://pay.example.com
  timeout: 3s
rate_limit:
  per_second: 2
  burst: 4
`), 0o600))

	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("PAYMENT_API_KEY", "sk_test_123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shopd", cfg.ServiceName)
	assert.Equal(t, ":9100", cfg.HTTPAddr, "env beats file")
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL.Std())
	assert.Equal(t, "https://pay.example.com", cfg.Payment.Endpoint)
	assert.Equal(t, "sk_test_123", cfg.Payment.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout.Std())
	assert.Equal(t, 2.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
}

func TestLoadDurationAndRateEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("PAYMENT_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_SECOND", "3.5")
	t.Setenv("RATE_LIMIT_BURST", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.TokenTTL.Std())
	assert.Equal(t, 5*time.Second, cfg.Payment.Timeout.Std())
	assert.Equal(t, 3.5, cfg.RateLimit.PerSecond)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
}

func TestLoadRejectsBadDurationEnv(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_TTL")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token_ttl: soon\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse duration")
}
