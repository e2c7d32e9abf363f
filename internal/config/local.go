package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration for local daemon mode
type LocalConfig struct {
	Daemon  DaemonConfig  `yaml:"daemon"`
	Amadeus AmadeusConfig `yaml:"amadeus"`
	Queue   QueueConfig   `yaml:"queue"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// AmadeusConfig holds pricing API settings
type AmadeusConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"-"` // Loaded from secrets.yaml
	APISecret string `yaml:"-"` // Loaded from secrets.yaml
}

// QueueConfig holds RabbitMQ settings
type QueueConfig struct {
	URL string `yaml:"url"`
}

// SecretsConfig holds Amadeus credentials loaded from secrets.yaml
type SecretsConfig struct {
	Amadeus struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"amadeus"`
}

// WanderlistDir returns the path to ~/.wanderlist
func WanderlistDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".wanderlist"), nil
}

// EnsureWanderlistDir creates ~/.wanderlist and subdirectories if they don't exist
func EnsureWanderlistDir() (string, error) {
	dir, err := WanderlistDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local mode
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     3001,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Amadeus: AmadeusConfig{
			BaseURL: "https://test.api.amadeus.com",
		},
	}
}

// LoadLocalConfig loads configuration from ~/.wanderlist/config.yaml
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := WanderlistDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	// If config doesn't exist, return defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultLocalConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultLocalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// loadSecrets loads Amadeus credentials from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	// If secrets file doesn't exist, skip
	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(secretsPath)
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	if secrets.Amadeus.APIKey != "" {
		cfg.Amadeus.APIKey = secrets.Amadeus.APIKey
	}
	if secrets.Amadeus.APISecret != "" {
		cfg.Amadeus.APISecret = secrets.Amadeus.APISecret
	}

	return nil
}

// SaveLocalConfig saves configuration to ~/.wanderlist/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureWanderlistDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, "config.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets saves Amadeus credentials to ~/.wanderlist/secrets.yaml
func SaveSecrets(apiKey, apiSecret string) error {
	dir, err := EnsureWanderlistDir()
	if err != nil {
		return err
	}

	secretsPath := filepath.Join(dir, "secrets.yaml")

	var secrets SecretsConfig
	secrets.Amadeus.APIKey = apiKey
	secrets.Amadeus.APISecret = apiSecret

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(secretsPath, data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}
