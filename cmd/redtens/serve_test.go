package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/redtens/internal/server"
)

func TestServeOverrides(t *testing.T) {
	seed := int64(99)
	cmd := &ServeCmd{Addr: "127.0.0.1:9000", LogLevel: "debug", Seed: &seed}

	cfg := server.DefaultConfig()
	require.NoError(t, cmd.apply(cfg))

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, &seed, cfg.Game.Seed)
	require.NoError(t, cfg.Validate())
}

func TestServeOverridePortOnly(t *testing.T) {
	cmd := &ServeCmd{Addr: ":4000"}

	cfg := server.DefaultConfig()
	require.NoError(t, cmd.apply(cfg))
	assert.Equal(t, "0.0.0.0:4000", cfg.Addr())
}

func TestServeRejectsBadAddr(t *testing.T) {
	for _, addr := range []string{"localhost", "localhost:http"} {
		cmd := &ServeCmd{Addr: addr}
		assert.Error(t, cmd.apply(server.DefaultConfig()), addr)
	}
}
