// Package config handles loading and validating fleetwatch configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/keydecode"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} placeholders in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ErrConfigFileNotFound is returned by Load when the specified config file does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

// Config is the top-level fleetwatch configuration.
type Config struct {
	Listen             string        `yaml:"listen"`
	DBPath             string        `yaml:"db_path"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	Decoder            string        `yaml:"decoder"`
	DefaultWindowHours int           `yaml:"default_window_hours"`
	ShutdownTimeout    Duration      `yaml:"shutdown_timeout"`
	Webhook            WebhookConfig `yaml:"webhook"`
}

// WebhookConfig guards the ingestion endpoint. When neither key is set the
// endpoint accepts unauthenticated pushes.
type WebhookConfig struct {
	// APIKey is a plain key, hashed at load time and then cleared.
	APIKey     string `yaml:"api_key"`
	APIKeyHash string `yaml:"api_key_hash"`
}

// Duration wraps time.Duration with YAML string parsing support.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Load reads configuration from a YAML file. A .env file named by
// FLEETWATCH_ENV_FILE (default ".env") is loaded first when present, without
// overriding variables already set. If no path is given, defaults plus
// environment overrides are used. If a path is given and the file does not
// exist, ErrConfigFileNotFound is returned.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.hashAPIKey(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadEnvFile() error {
	envFile := os.Getenv("FLEETWATCH_ENV_FILE")
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		if explicit {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, envFile)
		}
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("loading env file %s: %w", envFile, err)
	}
	return nil
}

// hashAPIKey replaces a plain webhook key with its bcrypt hash.
func (c *Config) hashAPIKey() error {
	if c.Webhook.APIKey == "" {
		return nil
	}
	if c.Webhook.APIKeyHash != "" {
		return fmt.Errorf("config validation: webhook: set api_key or api_key_hash, not both")
	}
	hash, err := HashAPIKey(c.Webhook.APIKey)
	if err != nil {
		return err
	}
	c.Webhook.APIKeyHash = hash
	c.Webhook.APIKey = ""
	return nil
}

// HashAPIKey returns the bcrypt hash of a webhook key.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing api key: %w", err)
	}
	return string(hash), nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("log_format must be one of: text, json")
	}
	if _, err := keydecode.New(c.Decoder); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if c.DefaultWindowHours < 1 || c.DefaultWindowHours > 8760 {
		return fmt.Errorf("default_window_hours must be between 1 and 8760")
	}
	if c.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("shutdown_timeout must be > 0")
	}
	if h := c.Webhook.APIKeyHash; h != "" {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return fmt.Errorf("webhook.api_key_hash is not a bcrypt hash: %w", err)
		}
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Listen:             ":8000",
		DBPath:             "/data/fleetwatch.db",
		LogLevel:           "info",
		LogFormat:          "text",
		Decoder:            keydecode.StrategyPositional,
		DefaultWindowHours: 24,
		ShutdownTimeout:    Duration{10 * time.Second},
	}
}

// expandEnvVars replaces ${VAR_NAME} placeholders in raw YAML with the
// corresponding environment variable values. Unset variables are replaced
// with an empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		key := string(match[2 : len(match)-1]) // strip ${ and }
		return []byte(os.Getenv(key))
	})
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLEETWATCH_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("FLEETWATCH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FLEETWATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLEETWATCH_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("FLEETWATCH_DECODER"); v != "" {
		cfg.Decoder = v
	}
	if v := os.Getenv("FLEETWATCH_DEFAULT_WINDOW_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultWindowHours = n
		}
	}
	// either key variable replaces both file keys; setting both variables is
	// left for hashAPIKey to reject
	key, hash := os.Getenv("FLEETWATCH_API_KEY"), os.Getenv("FLEETWATCH_API_KEY_HASH")
	if key != "" || hash != "" {
		cfg.Webhook.APIKey = key
		cfg.Webhook.APIKeyHash = hash
	}
}
