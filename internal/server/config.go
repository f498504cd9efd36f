package server

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server   *Settings `hcl:"server,block"`
	Defaults *Defaults `hcl:"defaults,block"`
}

// Settings contains server-level configuration
type Settings struct {
	Address             string `hcl:"address,optional"`
	LogLevel            string `hcl:"log_level,optional"`
	IdleTimeoutSeconds  int    `hcl:"idle_timeout_seconds,optional"`
	ReapIntervalSeconds int    `hcl:"reap_interval_seconds,optional"`
}

// Defaults holds the values new games get when a request leaves them out
type Defaults struct {
	BigBlind   int `hcl:"big_blind,optional"`
	MaxPlayers int `hcl:"max_players,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// ReapingDisabled, as idle_timeout_seconds, keeps idle games forever. An
// omitted or zero timeout gets the default instead.
const ReapingDisabled = -1

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &Settings{}
	}
	if c.Defaults == nil {
		c.Defaults = &Defaults{}
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.IdleTimeoutSeconds == 0 {
		c.Server.IdleTimeoutSeconds = 30 * 60
	}
	if c.Server.ReapIntervalSeconds == 0 {
		c.Server.ReapIntervalSeconds = 60
	}
	if c.Defaults.BigBlind == 0 {
		c.Defaults.BigBlind = 10
	}
	if c.Defaults.MaxPlayers == 0 {
		c.Defaults.MaxPlayers = 10
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}
	if c.Server.IdleTimeoutSeconds < ReapingDisabled {
		return fmt.Errorf("idle timeout must be positive or %d to disable reaping, got %d", ReapingDisabled, c.Server.IdleTimeoutSeconds)
	}
	if c.Server.ReapIntervalSeconds <= 0 {
		return fmt.Errorf("reap interval must be positive")
	}
	if c.Defaults.BigBlind < 2 {
		return fmt.Errorf("default big blind must be 2 or higher, got %d", c.Defaults.BigBlind)
	}
	if c.Defaults.MaxPlayers < 2 {
		return fmt.Errorf("max players must be 2 or higher, got %d", c.Defaults.MaxPlayers)
	}
	return nil
}

// IdleTimeout is how long a game may go untouched before it is reaped.
// It is zero, meaning never, when the file sets ReapingDisabled.
func (c *Config) IdleTimeout() time.Duration {
	if c.Server.IdleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Server.IdleTimeoutSeconds) * time.Second
}

// ReapInterval is how often idle games are looked for.
func (c *Config) ReapInterval() time.Duration {
	return time.Duration(c.Server.ReapIntervalSeconds) * time.Second
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
