package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/spag/packages/errdef"
)

// Config represents the spag configuration
type Config struct {
	StateDir         string `json:"stateDir,omitempty"`         // Directory holding environments, history and remembers
	DefaultEndpoint  string `json:"defaultEndpoint,omitempty"`  // Used when no environment supplies an endpoint
	RequestDir       string `json:"requestDir,omitempty"`       // Directory searched for request files
	Timeout          int    `json:"timeout,omitempty"`          // milliseconds
	FollowRedirects  *bool  `json:"followRedirects,omitempty"`
	MaxRedirects     int    `json:"maxRedirects,omitempty"`
	ValidateSSL      *bool  `json:"validateSSL,omitempty"`
	Proxy            string `json:"proxy,omitempty"`
	HistorySize      int    `json:"historySize,omitempty"`      // Entries kept in history.yml
	HistoryBodyLimit int    `json:"historyBodyLimit,omitempty"` // Response body bytes kept per history entry
	NoColor          *bool  `json:"noColor,omitempty"`
	LogLevel         string `json:"logLevel,omitempty"`
	LogFile          string `json:"logFile,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout as a duration
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return time.Duration(DefaultTimeoutMs) * time.Millisecond
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".spag.config.json",
	"spag.config.json",
	".spagrc",
	".spagrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errdef.New(errdef.CodeDocumentIO, "config file %s not found", path)
		}
		return nil, errdef.Wrap(errdef.CodeDocumentIO, err, "read config %s", path)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errdef.Wrap(errdef.CodeDocumentIO, err, "parse config %s", path)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.StateDir != "" {
		result.StateDir = other.StateDir
	}
	if other.DefaultEndpoint != "" {
		result.DefaultEndpoint = other.DefaultEndpoint
	}
	if other.RequestDir != "" {
		result.RequestDir = other.RequestDir
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.HistorySize > 0 {
		result.HistorySize = other.HistorySize
	}
	if other.HistoryBodyLimit > 0 {
		result.HistoryBodyLimit = other.HistoryBodyLimit
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		result.LogFile = other.LogFile
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
