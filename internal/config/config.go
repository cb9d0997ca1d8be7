package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config is the client configuration. Values come from an optional YAML file
// overlaid by environment variables, so a .env or the shell always wins.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	Environment    string        `yaml:"environment"`
	TokenPath      string        `yaml:"token_path"` // empty = default under the user config dir
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Debug enables verbose logging; defaults to true outside prod.
	Debug bool `yaml:"debug"`
}

// Load builds the configuration. file may be empty to skip the YAML layer.
func Load(file string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:     "http://localhost:8000/api",
		Environment:    "dev",
		RequestTimeout: 30 * time.Second,
	}

	if file != "" {
		if err := loadFile(file, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	// Debug defaults to true in dev/test, false in prod, unless forced.
	switch os.Getenv("DEBUG") {
	case "true":
		cfg.Debug = true
	case "false":
		cfg.Debug = false
	default:
		if cfg.Environment != "prod" {
			cfg.Debug = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(file string, cfg *Config) error {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // the file layer is optional
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", file, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.TokenPath = getEnv("TOKEN_PATH", cfg.TokenPath)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL, validation.Required),
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
	); err != nil {
		return err
	}
	if c.RequestTimeout < time.Second {
		return fmt.Errorf("request_timeout must be at least 1s, got %s", c.RequestTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
