package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds the optional execution archive connection. An
// empty URL disables the archive and keeps executions in memory only.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// EngineConfig holds tunables for the two engines.
type EngineConfig struct {
	MaxSignalDepth    int           `yaml:"max_signal_depth"`   // recursive signal action limit (default: 8)
	ObservationWindow time.Duration `yaml:"observation_window"` // how long finished resolutions stay queryable
	RedriveInterval   time.Duration `yaml:"redrive_interval"`   // background sweep over running executions
	WorkflowDir       string        `yaml:"workflow_dir"`       // optional directory of YAML workflow definitions
}

// NotifyConfig holds notification delivery settings.
type NotifyConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Engine: EngineConfig{
			MaxSignalDepth:    8,
			ObservationWindow: time.Minute,
			RedriveInterval:   time.Minute,
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Engine.MaxSignalDepth <= 0 {
		cfg.Engine.MaxSignalDepth = 8
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		cfg.Database.URL = env
	}
	if env := os.Getenv("SLACK_WEBHOOK_URL"); env != "" {
		cfg.Notify.SlackWebhookURL = env
	}

	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			if env := os.Getenv("DATABASE_URL"); env != "" {
				cfg.Database.URL = env
			}
			if env := os.Getenv("SLACK_WEBHOOK_URL"); env != "" {
				cfg.Notify.SlackWebhookURL = env
			}
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Addr returns the host:port string for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
