// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// Inputs
	Description string `json:"description,omitempty"` // Campaign description text
	ListID      string `json:"list_id,omitempty"`     // Prospect list reference
	ListFile    string `json:"list_file,omitempty"`   // Path to a JSON prospect list (CLI runs without a database)
	Goals       string `json:"goals,omitempty"`       // Campaign goals for segmentation

	// Services
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	DeliveryURL string `json:"delivery_url,omitempty"` // Delivery engine endpoint

	// Behavior
	UseBrowser  bool `json:"use_browser,omitempty"` // Headless browser for SPA prospect sites
	Verbose     bool `json:"verbose,omitempty"`     // Print detailed debug information
	Concurrency int  `json:"concurrency,omitempty"` // Parallel prospect research limit
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. It does not check for
// required fields; those are handled after merging with CLI flags.
func (c *Config) Validate() error {
	if c.ListID != "" && c.ListFile != "" {
		return fmt.Errorf("config error: 'list_id' and 'list_file' are mutually exclusive")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.ListFile != "" {
		if _, err := os.Stat(c.ListFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: list file not found: %s", c.ListFile)
		}
	}
	return nil
}
