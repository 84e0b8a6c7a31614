package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/redtens/internal/room"
)

// Config is the complete server configuration, loaded from an HCL file.
type Config struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings controls the listener and logging.
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	LogFormat      string   `hcl:"log_format,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// GameSettings tune every room the server hosts.
type GameSettings struct {
	Seed          *int64 `hcl:"seed,optional"`
	ChatHistory   int    `hcl:"chat_history,optional"`
	ChatMaxLength int    `hcl:"chat_max_length,optional"`
}

// Both blocks are optional in the file.
type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   "0.0.0.0",
			Port:      3001,
			LogLevel:  "info",
			LogFormat: LogFormatText,
		},
		Game: GameSettings{
			ChatHistory:   room.DefaultChatHistory,
			ChatMaxLength: room.DefaultChatMaxLength,
		},
	}
}

// LoadConfig reads filename. A missing file yields DefaultConfig; values
// left out of the file keep their defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	if s := raw.Server; s != nil {
		if s.Address != "" {
			cfg.Server.Address = s.Address
		}
		if s.Port != 0 {
			cfg.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			cfg.Server.LogLevel = s.LogLevel
		}
		if s.LogFormat != "" {
			cfg.Server.LogFormat = s.LogFormat
		}
		cfg.Server.AllowedOrigins = s.AllowedOrigins
	}
	if g := raw.Game; g != nil {
		cfg.Game.Seed = g.Seed
		if g.ChatHistory != 0 {
			cfg.Game.ChatHistory = g.ChatHistory
		}
		if g.ChatMaxLength != 0 {
			cfg.Game.ChatMaxLength = g.ChatMaxLength
		}
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.Server.LogLevel, err)
	}
	switch c.Server.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log_format %q: must be %s or %s", c.Server.LogFormat, LogFormatText, LogFormatJSON)
	}
	for _, origin := range c.Server.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("allowed_origins must not contain empty entries")
		}
	}
	if c.Game.ChatHistory < 1 || c.Game.ChatHistory > 1000 {
		return fmt.Errorf("chat_history must be between 1 and 1000, got %d", c.Game.ChatHistory)
	}
	if c.Game.ChatMaxLength < 1 || c.Game.ChatMaxLength > 2000 {
		return fmt.Errorf("chat_max_length must be between 1 and 2000, got %d", c.Game.ChatMaxLength)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}
