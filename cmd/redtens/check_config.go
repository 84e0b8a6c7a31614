package main

import (
	"fmt"

	"github.com/lox/redtens/internal/server"
)

// CheckConfigCmd validates a configuration file without serving.
type CheckConfigCmd struct {
	Config string `short:"c" default:"redtens.hcl" help:"Path to HCL configuration file"`
}

func (c *CheckConfigCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Printf("%s: ok (listening on %s, log level %s)\n", c.Config, cfg.Addr(), cfg.Server.LogLevel)
	return nil
}
