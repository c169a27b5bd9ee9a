package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultServer is used when no server is configured.
const DefaultServer = "http://localhost:8000"

// Config stores CLI configuration
type Config struct {
	Server      string `json:"server"`       // API server address
	APIKey      string `json:"api_key"`      // X-Api-Key value, empty when auth is off
	UserID      string `json:"user_id"`      // Storefront user persona
	LoyaltyTier string `json:"loyalty_tier"` // Loyalty tier for cart pricing
}

// GetConfigPath returns the configuration file path (~/.wayctl/config.json)
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".wayctl", "config.json"), nil
}

// Load loads configuration from file
func Load() (*Config, error) {
	configFile, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// Missing config file means defaults.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return &Config{Server: DefaultServer, UserID: "user_new"}, nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.UserID == "" {
		cfg.UserID = "user_new"
	}

	return &cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold an API key.
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
