package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/absfs/zcrypt"
)

// DefaultPasswordEnv is the environment variable checked for a password
const DefaultPasswordEnv = "ZCRYPT_PASSWORD"

// Config holds the command-line tool configuration.
type Config struct {
	Level     int            `yaml:"level" env:"ZCRYPT_LEVEL"`
	Threads   int            `yaml:"threads" env:"ZCRYPT_THREADS"` // 0 means 1.5x physical cores
	LogLevel  string         `yaml:"log_level" env:"ZCRYPT_LOG_LEVEL"`
	LogFormat string         `yaml:"log_format" env:"ZCRYPT_LOG_FORMAT"` // auto, text, json
	Password  PasswordConfig `yaml:"password"`
}

// PasswordConfig holds password acquisition settings.
type PasswordConfig struct {
	Env     string `yaml:"env" env:"ZCRYPT_PASSWORD_ENV"`   // Name of the variable holding the password
	File    string `yaml:"file" env:"ZCRYPT_PASSWORD_FILE"` // Path of a file holding the password
	Confirm bool   `yaml:"confirm" env:"ZCRYPT_PASSWORD_CONFIRM"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Level:     zcrypt.DefaultLevel,
		Threads:   0,
		LogLevel:  "info",
		LogFormat: "auto",
		Password: PasswordConfig{
			Env: DefaultPasswordEnv,
		},
	}
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; an empty path skips the file. getenv looks
// up the overrides; nil means os.Getenv.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := loadFromEnv(config, getenv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromEnv loads configuration values from environment variables.
func loadFromEnv(config *Config, getenv func(string) string) error {
	if v := getenv("ZCRYPT_LEVEL"); v != "" {
		level, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return zcrypt.NewValidationError("ZCRYPT_LEVEL", v, "must be an integer")
		}
		config.Level = level
	}
	if v := getenv("ZCRYPT_THREADS"); v != "" {
		threads, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return zcrypt.NewValidationError("ZCRYPT_THREADS", v, "must be an integer")
		}
		config.Threads = threads
	}
	if v := getenv("ZCRYPT_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := getenv("ZCRYPT_LOG_FORMAT"); v != "" {
		config.LogFormat = v
	}
	if v := getenv("ZCRYPT_PASSWORD_ENV"); v != "" {
		config.Password.Env = v
	}
	if v := getenv("ZCRYPT_PASSWORD_FILE"); v != "" {
		config.Password.File = v
	}
	if v := getenv("ZCRYPT_PASSWORD_CONFIRM"); v != "" {
		config.Password.Confirm = v == "true" || v == "1"
	}
	return nil
}

// Validate checks the configuration. Levels outside 0-9 are accepted here
// and clamped by the pipeline.
func (c *Config) Validate() error {
	if c.Level < 0 {
		return zcrypt.NewValidationError("level", c.Level, "compression level cannot be negative")
	}
	if err := zcrypt.ValidateThreads(c.Threads); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "auto", "text", "json":
	default:
		return zcrypt.NewValidationError("log_format", c.LogFormat, "must be one of auto, text, json")
	}
	if c.Password.Env == "" {
		return zcrypt.NewValidationError("password.env", c.Password.Env, "environment variable name cannot be empty")
	}
	return nil
}
