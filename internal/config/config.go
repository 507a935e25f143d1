// Package config loads specgate settings from defaults, the global and
// local JSON files and SPECGATE_ environment variables, in increasing
// priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "SPECGATE_"

// Configuration represents the specgate CLI configuration
type Configuration struct {
	RegistryPath  string   `koanf:"registry_path" json:"registry_path"`
	RulesPath     string   `koanf:"rules_path" json:"rules_path"`
	TemplatesDir  string   `koanf:"templates_dir" json:"templates_dir"`
	MaxProperties int      `koanf:"max_properties" json:"max_properties" validate:"min=1,max=500"`
	MaxRetries    int      `koanf:"max_retries" json:"max_retries" validate:"min=0,max=10"`
	BackoffMS     int      `koanf:"backoff_ms" json:"backoff_ms" validate:"min=0,max=60000"`
	MaxBackoffMS  int      `koanf:"max_backoff_ms" json:"max_backoff_ms" validate:"min=0,max=600000,gtefield=BackoffMS"`
	Timeout       int      `koanf:"timeout" json:"timeout" validate:"omitempty,min=1,max=86400"` // Seconds per generation attempt (0 = no timeout)
	GeneratorCmd  string   `koanf:"generator_cmd" json:"generator_cmd"`
	GeneratorArgs []string `koanf:"generator_args" json:"generator_args"`
	IDStrategy    string   `koanf:"id_strategy" json:"id_strategy" validate:"oneof=deterministic unique"`
	LogLevel      string   `koanf:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	Concurrency   int      `koanf:"concurrency" json:"concurrency" validate:"min=1,max=64"`
	ShowProgress  bool     `koanf:"show_progress" json:"show_progress"` // Show a spinner during generation when stderr is a terminal
	StateDir      string   `koanf:"state_dir" json:"state_dir"`
	MaxHistory    int      `koanf:"max_history" json:"max_history" validate:"min=0,max=10000"` // Decision log entries kept (0 = disabled)
}

// Load loads configuration from global, local, and environment sources
// Priority: Environment variables > Local config > Global config > Defaults
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if globalPath := GlobalConfigPath(); globalPath != "" {
		if err := loadFile(k, globalPath); err != nil {
			return nil, fmt.Errorf("failed to load global config: %w", err)
		}
	}

	if localConfigPath != "" {
		if err := loadFile(k, localConfigPath); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.RegistryPath = expandHomePath(cfg.RegistryPath)
	cfg.RulesPath = expandHomePath(cfg.RulesPath)
	cfg.TemplatesDir = expandHomePath(cfg.TemplatesDir)
	cfg.StateDir = expandHomePath(cfg.StateDir)

	return &cfg, nil
}

// loadFile merges a JSON config file when it exists.
func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := ValidateJSONSyntax(path); err != nil {
		return err
	}
	return k.Load(file.Provider(path), json.Parser())
}

var configValidator = validator.New()

func validate(cfg *Configuration) error {
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", toValidationError(err))
	}
	return nil
}

// GlobalConfigPath returns ~/.specgate/config.json, or "" when the home
// directory is unknown.
func GlobalConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".specgate", "config.json")
}

// envTransform converts environment variable names to config keys
// Example: SPECGATE_MAX_RETRIES -> max_retries
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// TimeoutDuration returns the per-attempt generation timeout.
func (c *Configuration) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Backoff returns the delay before the first retry.
func (c *Configuration) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// MaxBackoff returns the retry delay ceiling.
func (c *Configuration) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMS) * time.Millisecond
}
