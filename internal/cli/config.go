package cli

import (
	"github.com/mcoot/tabletop-companion/internal/config"
)

// Config holds CLI configuration. Environment settings are the defaults
// and command-line flags override them.
type Config struct {
	config.Config

	Output  string
	Verbose bool
}

// DefaultConfig returns a Config seeded from .env and the environment
func DefaultConfig() (*Config, error) {
	envCfg, err := config.Load()
	if err != nil {
		return &Config{Output: "text"}, err
	}
	return &Config{Config: envCfg, Output: "text"}, nil
}

// logConfig returns the log settings with --verbose applied
func (c *Config) logConfig() config.LogConfig {
	lc := c.Log
	if c.Verbose {
		lc.Level = "debug"
	}
	return lc
}
