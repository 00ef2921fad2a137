package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NOTEKEEP_ADDR", "NOTEKEEP_DATA_DIR",
		"SAMPLE_API_KEY", "sample_api_key",
		"NOTEKEEP_LOGIN_RPS", "NOTEKEEP_LOGIN_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, NotConfigured, cfg.SampleAPIKey)
	assert.Greater(t, cfg.RateLimit.RPS, 0.0)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTEKEEP_ADDR", ":9000")
	t.Setenv("NOTEKEEP_DATA_DIR", "/var/lib/notekeep")
	t.Setenv("SAMPLE_API_KEY", "sk-test")
	t.Setenv("NOTEKEEP_LOGIN_RPS", "2.5")
	t.Setenv("NOTEKEEP_LOGIN_BURST", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/notekeep", cfg.DataDir)
	assert.Equal(t, "sk-test", cfg.SampleAPIKey)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
}

func TestLoadAcceptsLowercaseSampleKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("sample_api_key", "sk-lower")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-lower", cfg.SampleAPIKey)
}

func TestLoadRejectsBadRateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTEKEEP_LOGIN_RPS", "not-a-number")
	t.Setenv("NOTEKEEP_LOGIN_BURST", "-1")

	_, err := Load()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}
