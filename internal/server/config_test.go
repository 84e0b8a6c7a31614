package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redtens.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0:3001", cfg.Addr())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server {
  port            = 8080
  log_level       = "debug"
  allowed_origins = ["https://redtens.example", "localhost:5173"]
}

game {
  seed        = 7
  chat_history = 20
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, LogFormatText, cfg.Server.LogFormat)
	assert.Equal(t, []string{"https://redtens.example", "localhost:5173"}, cfg.Server.AllowedOrigins)
	require.NotNil(t, cfg.Game.Seed)
	assert.Equal(t, int64(7), *cfg.Game.Seed)
	assert.Equal(t, 20, cfg.Game.ChatHistory)
	assert.Equal(t, 200, cfg.Game.ChatMaxLength)
}

func TestLoadConfigRejectsBadHCL(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `server { port = `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = LoadConfig(writeConfig(t, `server { colour = "red" }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"log level", func(c *Config) { c.Server.LogLevel = "loud" }, "invalid log_level"},
		{"log format", func(c *Config) { c.Server.LogFormat = "xml" }, "invalid log_format"},
		{"empty origin", func(c *Config) { c.Server.AllowedOrigins = []string{" "} }, "allowed_origins"},
		{"chat history", func(c *Config) { c.Game.ChatHistory = 0 }, "chat_history"},
		{"chat length", func(c *Config) { c.Game.ChatMaxLength = 5000 }, "chat_max_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
