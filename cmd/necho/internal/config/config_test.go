package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/necho/cmd/necho/internal/core"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"DEBUG", "LOG_FORMAT", "NECHO_HOST", "NECHO_PORT", "NECHO_BACKLOG", "NECHO_LISTENER_MODE",
		"NECHO_MAX_LINE_BYTES", "NECHO_MAX_RESPONSE_BYTES", "NECHO_IDLE_TIMEOUT", "HEALTH_SERVER_ENABLED", "HEALTH_SERVER_PORT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ListenerModeSocket, cfg.ListenerMode)
	assert.Equal(t, DefaultMaxLineBytes, cfg.MaxLineBytes)
	assert.Equal(t, DefaultMaxResponseBytes, cfg.MaxResponseBytes)
	assert.Zero(t, cfg.IdleTimeout)
	assert.False(t, cfg.HealthServerEnabled)
	assert.Equal(t, core.ServerConfig{BindAddress: "0.0.0.0", Port: 5000, Backlog: 5}, cfg.ServerConfig())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("NECHO_HOST", "127.0.0.1")
	t.Setenv("NECHO_PORT", "6000")
	t.Setenv("NECHO_BACKLOG", "64")
	t.Setenv("NECHO_LISTENER_MODE", "std")
	t.Setenv("NECHO_MAX_LINE_BYTES", "2048")
	t.Setenv("NECHO_MAX_RESPONSE_BYTES", "65536")
	t.Setenv("NECHO_IDLE_TIMEOUT", "30s")
	t.Setenv("HEALTH_SERVER_ENABLED", "true")
	t.Setenv("HEALTH_SERVER_PORT", "9090")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ListenerModeStandard, cfg.ListenerMode)
	assert.Equal(t, 2048, cfg.MaxLineBytes)
	assert.Equal(t, 65536, cfg.MaxResponseBytes)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.True(t, cfg.HealthServerEnabled)
	assert.Equal(t, "9090", cfg.HealthServerPort)
	assert.Equal(t, core.ServerConfig{BindAddress: "127.0.0.1", Port: 6000, Backlog: 64}, cfg.ServerConfig())
}

func TestLoadFromEnvRejectsInvalidValues(t *testing.T) {
	t.Setenv("NECHO_PORT", "70000")
	t.Setenv("NECHO_BACKLOG", "0")
	t.Setenv("NECHO_LISTENER_MODE", "carrier-pigeon")
	t.Setenv("NECHO_MAX_RESPONSE_BYTES", "-5")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NECHO_PORT")
	assert.Contains(t, err.Error(), "NECHO_BACKLOG")
	assert.Contains(t, err.Error(), "NECHO_LISTENER_MODE")
	assert.Contains(t, err.Error(), "NECHO_MAX_RESPONSE_BYTES")
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		host  string
		valid bool
	}{
		{host: "0.0.0.0", valid: true},
		{host: "::", valid: true},
		{host: "localhost", valid: true},
		{host: "echo.internal.example", valid: true},
		{host: "not a host", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			cfg := validConfig()
			cfg.Host = tt.host
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidateHealthPortClash(t *testing.T) {
	cfg := validConfig()
	cfg.HealthServerEnabled = true
	cfg.HealthServerPort = "5000"
	assert.Error(t, cfg.Validate())

	cfg.HealthServerPort = "8080"
	assert.NoError(t, cfg.Validate())
}

func TestApplyPortArg(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.ApplyPortArg("7000"))
	assert.Equal(t, 7000, cfg.Port)

	assert.Error(t, cfg.ApplyPortArg("seven"))
	assert.Error(t, cfg.ApplyPortArg("-1"))
}

func validConfig() *Config {
	return &Config{
		LogFormat:        "text",
		Host:             DefaultHost,
		Port:             DefaultPort,
		Backlog:          DefaultBacklog,
		ListenerMode:     ListenerModeSocket,
		MaxLineBytes:     DefaultMaxLineBytes,
		MaxResponseBytes: DefaultMaxResponseBytes,
		HealthServerPort: "8080",
	}
}
