// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (RAGNEWS_* overrides)
//  2. Config file (~/.ragnews/config.yaml)
//  3. Default values
//
// Error Handling:
//   - Sentinel errors for Go-idiomatic checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidServerURL indicates the backend URL is missing or unparsable.
	ErrInvalidServerURL = errors.New("invalid server URL")

	// ErrInvalidTimeout indicates a negative request timeout.
	ErrInvalidTimeout = errors.New("invalid request timeout")
)

// DefaultServerURL is the backend address used when nothing is configured,
// matching the backend's development default.
const DefaultServerURL = "http://localhost:8000"

// Config stores application configuration.
type Config struct {
	// ServerURL is the base URL of the RAG News backend.
	ServerURL string `mapstructure:"server_url" json:"server_url"`

	// RequestTimeout bounds each HTTP request. Zero means no client-side
	// bound (the transport default): a hung request then holds the busy
	// indicator until it resolves, which is the documented contract.
	// Operators who want a bound set this.
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout"`

	// SessionPath overrides where the session token file is stored.
	// Empty means ~/.ragnews/session.json.
	SessionPath string `mapstructure:"session_path" json:"session_path"`

	// Debug enables debug-level logging.
	Debug bool `mapstructure:"debug" json:"debug"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".ragnews")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server_url", DefaultServerURL)
	v.SetDefault("request_timeout", time.Duration(0))
	v.SetDefault("session_path", "")
	v.SetDefault("debug", false)
}

// bindEnvVariables binds environment overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("server_url", "RAGNEWS_SERVER_URL")
	mustBind("request_timeout", "RAGNEWS_REQUEST_TIMEOUT")
	mustBind("session_path", "RAGNEWS_SESSION_PATH")
	mustBind("debug", "RAGNEWS_DEBUG")
}

// Validate checks the configuration, failing fast on first error.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidServerURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidServerURL)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: must not be negative, got %s", ErrInvalidTimeout, c.RequestTimeout)
	}

	return nil
}

// LogLevel returns the slog level matching the configuration.
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
