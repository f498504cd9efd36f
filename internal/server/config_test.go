package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, time.Minute, cfg.ReapInterval())
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  address   = "127.0.0.1:9000"
  log_level = "debug"
  idle_timeout_seconds = 120
}

defaults {
  big_blind = 50
}
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.Equal(t, 2*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, 60, cfg.Server.ReapIntervalSeconds, "omitted values get defaults")
	assert.Equal(t, 50, cfg.Defaults.BigBlind)
	assert.Equal(t, 10, cfg.Defaults.MaxPlayers)
}

func TestLoadConfigDisablesReaping(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  idle_timeout_seconds = -1
}
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ReapingDisabled, cfg.Server.IdleTimeoutSeconds)
	assert.Zero(t, cfg.IdleTimeout())

	registry := NewRegistry(testLogger(), quartz.NewMock(t), cfg.IdleTimeout(), nil, nil, nil)
	_, err = registry.Create(CreateOptions{BigBlind: 10})
	require.NoError(t, err)
	assert.Zero(t, registry.ReapIdle())
	assert.Equal(t, 1, registry.Len())
}

func TestLoadConfigParseError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { address = `), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`server { port = 1 }`), 0o600))
	_, err = LoadConfig(path)
	require.Error(t, err, "unknown attributes are rejected")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }},
		{"negative idle timeout", func(c *Config) { c.Server.IdleTimeoutSeconds = -5 }},
		{"zero reap interval", func(c *Config) { c.Server.ReapIntervalSeconds = 0 }},
		{"tiny big blind", func(c *Config) { c.Defaults.BigBlind = 1 }},
		{"one seat", func(c *Config) { c.Defaults.MaxPlayers = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
