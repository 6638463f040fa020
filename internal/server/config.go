package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// GameSettings contains game-level configuration
type GameSettings struct {
	// TrickPauseMillis is how long a completed trick stays on the
	// table before the winner leads.
	TrickPauseMillis int `hcl:"trick_pause_ms,optional"`

	// HistoryPath is the SQLite file for deal history. Empty keeps
	// history in memory only.
	HistoryPath string `hcl:"history_path,optional"`

	// Seed fixes the shuffle seed; 0 seeds from the clock.
	Seed int64 `hcl:"seed,optional"`

	// IdleTimeoutMinutes is how long a game may sit without activity
	// before the server removes it.
	IdleTimeoutMinutes int `hcl:"idle_timeout_minutes,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:        "localhost",
			Port:           8080,
			LogLevel:       "info",
			AllowedOrigins: []string{"*"},
		},
		Game: GameSettings{
			TrickPauseMillis:   2000,
			IdleTimeoutMinutes: 30,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Missing file means defaults
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
	if config.Game.TrickPauseMillis == 0 {
		config.Game.TrickPauseMillis = 2000
	}
	if config.Game.IdleTimeoutMinutes == 0 {
		config.Game.IdleTimeoutMinutes = 30
	}

	return &config, nil
}

// Validate checks the configuration for errors
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if c.Game.TrickPauseMillis < 0 {
		return fmt.Errorf("invalid trick pause: %d", c.Game.TrickPauseMillis)
	}
	if c.Game.IdleTimeoutMinutes < 0 {
		return fmt.Errorf("invalid idle timeout: %d", c.Game.IdleTimeoutMinutes)
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
