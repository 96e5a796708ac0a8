// Package config loads browserd's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/browserd/pkg/logging"
)

// Config is the complete server configuration.
type Config struct {
	// ElementTimeoutSeconds replaces absent or non-positive per-call timeouts
	ElementTimeoutSeconds int `yaml:"element_timeout_seconds" json:"element_timeout_seconds"`

	// ScriptElementTimeoutSeconds bounds the element wait of parameterized scripts
	ScriptElementTimeoutSeconds int `yaml:"script_element_timeout_seconds" json:"script_element_timeout_seconds"`

	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// ScreenshotDir receives screenshots taken without an explicit path.
	// Empty means ~/.mcp/screenshots.
	ScreenshotDir string `yaml:"screenshot_dir" json:"screenshot_dir"`

	// ShutdownConcurrency bounds parallel browser quits at exit
	ShutdownConcurrency int `yaml:"shutdown_concurrency" json:"shutdown_concurrency"`

	Playwright PlaywrightConfig `yaml:"playwright" json:"playwright"`
	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`

	// Path is the file the configuration was read from, empty for defaults
	Path string `yaml:"-" json:"-"`
}

// PlaywrightConfig controls the browser driver runtime.
type PlaywrightConfig struct {
	// Install downloads the driver and browsers on startup when missing
	Install bool `yaml:"install" json:"install"`

	// Browsers to install: chromium, firefox, webkit
	Browsers []string `yaml:"browsers" json:"browsers"`
}

// NavigationConfig restricts which URLs sessions may load.
type NavigationConfig struct {
	AllowedPatterns []string `yaml:"allowed_patterns" json:"allowed_patterns"`
	DeniedPatterns  []string `yaml:"denied_patterns" json:"denied_patterns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level" json:"level"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// ListenAddress serves /metrics when set, e.g. "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address" json:"listen_address"`
}

var validBrowsers = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		ElementTimeoutSeconds:       20,
		ScriptElementTimeoutSeconds: 5,
		PollInterval:                500 * time.Millisecond,
		ShutdownConcurrency:         4,
		Playwright: PlaywrightConfig{
			Install:  true,
			Browsers: []string{"chromium", "firefox", "webkit"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.mcp/browserd.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mcp", "browserd.yaml"), nil
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults when allowMissing is set.
func Load(path string, allowMissing bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Path = path

	return cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.ElementTimeoutSeconds <= 0 {
		return fmt.Errorf("element_timeout_seconds must be positive")
	}

	if c.ScriptElementTimeoutSeconds <= 0 {
		return fmt.Errorf("script_element_timeout_seconds must be positive")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	if c.PollInterval > time.Duration(c.ElementTimeoutSeconds)*time.Second {
		return fmt.Errorf("poll_interval %s exceeds element_timeout_seconds", c.PollInterval)
	}

	if c.ShutdownConcurrency < 0 {
		return fmt.Errorf("shutdown_concurrency cannot be negative")
	}

	for _, b := range c.Playwright.Browsers {
		if !validBrowsers[b] {
			return fmt.Errorf("invalid playwright browser: %s (must be 'chromium', 'firefox', or 'webkit')", b)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	return nil
}

// ElementTimeout returns the default element wait.
func (c *Config) ElementTimeout() time.Duration {
	return time.Duration(c.ElementTimeoutSeconds) * time.Second
}

// ScriptElementTimeout returns the element wait of parameterized scripts.
func (c *Config) ScriptElementTimeout() time.Duration {
	return time.Duration(c.ScriptElementTimeoutSeconds) * time.Second
}
