// Package config provides configuration loading and validation for qwery.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/paths"
)

// Environment variables that override the config file.
const (
	EnvServerURL = "QWERY_SERVER_URL"
	EnvLogLevel  = "QWERY_LOG_LEVEL"
)

// Defaults used when neither a flag, the environment nor the file sets a
// value.
const (
	DefaultServerURL      = "http://localhost:4096"
	DefaultLogLevel       = "info"
	DefaultTheme          = "default"
	DefaultAgent          = "query"
	DefaultModel          = "qwery-engine"
	DefaultChatModel      = "azure/gpt-5-mini"
	DefaultExportFilename = "conversation.md"
)

// Config represents the qwery configuration file.
type Config struct {
	// ServerURL is the root of the Qwery server.
	ServerURL string `toml:"server_url"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// LogFile overrides the default log path.
	LogFile string `toml:"log_file"`

	TUI    TUIConfig    `toml:"tui"`
	Export ExportConfig `toml:"export"`
}

// TUIConfig holds the interactive session defaults.
type TUIConfig struct {
	Theme     string `toml:"theme"`
	Agent     string `toml:"agent"`
	Model     string `toml:"model"`
	ChatModel string `toml:"chat_model"`
	// HistoryPersist controls whether prompt history and stash survive
	// restarts. Defaults to true.
	HistoryPersist *bool `toml:"history_persist"`
}

// ExportConfig holds the transcript export defaults.
type ExportConfig struct {
	Filename    string `toml:"filename"`
	Thinking    *bool  `toml:"thinking"`
	ToolDetails *bool  `toml:"tool_details"`
	HTML        bool   `toml:"html"`
}

// Load loads the qwery configuration from paths.ConfigPath.
// Returns nil config and nil error if the file doesn't exist.
func Load() (*Config, error) {
	path, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config from a specific path.
// Returns nil config and nil error if the file doesn't exist.
func LoadFromPath(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// GetServerURL returns the server URL from the environment, the file or the
// default, in that order.
func (c *Config) GetServerURL() string {
	if v := os.Getenv(EnvServerURL); v != "" {
		return v
	}
	if c != nil && c.ServerURL != "" {
		return c.ServerURL
	}
	return DefaultServerURL
}

// GetLogLevel returns the log level from the environment, the file or the
// default, in that order.
func (c *Config) GetLogLevel() string {
	if v := os.Getenv(EnvLogLevel); v != "" {
		return v
	}
	if c != nil && c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

// GetLogFile returns the configured log path, or "" for the default.
func (c *Config) GetLogFile() string {
	if c == nil {
		return ""
	}
	return c.LogFile
}

// GetTheme returns the configured theme id or the default.
func (c *Config) GetTheme() string {
	if c != nil && c.TUI.Theme != "" {
		return c.TUI.Theme
	}
	return DefaultTheme
}

// GetAgent returns the configured agent id or the default.
func (c *Config) GetAgent() string {
	if c != nil && c.TUI.Agent != "" {
		return c.TUI.Agent
	}
	return DefaultAgent
}

// GetModel returns the configured model id or the default.
func (c *Config) GetModel() string {
	if c != nil && c.TUI.Model != "" {
		return c.TUI.Model
	}
	return DefaultModel
}

// GetChatModel returns the inference model sent with chat requests.
func (c *Config) GetChatModel() string {
	if c != nil && c.TUI.ChatModel != "" {
		return c.TUI.ChatModel
	}
	return DefaultChatModel
}

// HistoryPersist reports whether prompt history is saved between sessions.
func (c *Config) HistoryPersist() bool {
	return boolOr(c, func(c *Config) *bool { return c.TUI.HistoryPersist })
}

// GetExportFilename returns the default transcript file name.
func (c *Config) GetExportFilename() string {
	if c != nil && c.Export.Filename != "" {
		return c.Export.Filename
	}
	return DefaultExportFilename
}

// ExportThinking reports whether exports include reasoning by default.
func (c *Config) ExportThinking() bool {
	return boolOr(c, func(c *Config) *bool { return c.Export.Thinking })
}

// ExportToolDetails reports whether exports include tool calls by default.
func (c *Config) ExportToolDetails() bool {
	return boolOr(c, func(c *Config) *bool { return c.Export.ToolDetails })
}

// ExportHTML reports whether exports are rendered as HTML.
func (c *Config) ExportHTML() bool {
	return c != nil && c.Export.HTML
}

// boolOr reads an optional flag that defaults to true.
func boolOr(c *Config, field func(*Config) *bool) bool {
	if c == nil {
		return true
	}
	if v := field(c); v != nil {
		return *v
	}
	return true
}
