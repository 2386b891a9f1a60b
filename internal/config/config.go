// Package config loads and validates the portsweep configuration file.
// Configuration merges three layers: built-in defaults, an optional YAML
// file, and flag/environment overrides applied by the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mwestin/portsweep/internal/logging"
)

const (
	configDirPerm  = 0755
	configFilePerm = 0644

	defaultBatchSize = 2500
	defaultTimeout   = 1500 * time.Millisecond
	defaultStartPort = 1
	defaultEndPort   = 1001
)

// Config represents the complete portsweep configuration.
type Config struct {
	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// ScanningConfig holds scan engine settings.
type ScanningConfig struct {
	// Upper bound on concurrently in-flight connection attempts
	BatchSize int `yaml:"batch_size" json:"batch_size" validate:"gt=0"`

	// Maximum time allowed for a single connection attempt
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`

	// Default scanned range [start_port, end_port)
	StartPort uint16 `yaml:"start_port" json:"start_port"`
	EndPort   uint16 `yaml:"end_port" json:"end_port"`

	// Suppress per-port open notifications
	Quiet bool `yaml:"quiet" json:"quiet"`

	// Prefer IPv6 addresses when resolving hostnames
	IPv6 bool `yaml:"ipv6" json:"ipv6"`
}

// MetricsConfig holds metrics exposition settings.
type MetricsConfig struct {
	// Enable the metrics HTTP listener
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address, e.g. "127.0.0.1:9090"
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" validate:"required_with=Enabled"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scanning: ScanningConfig{
			BatchSize: defaultBatchSize,
			Timeout:   defaultTimeout,
			StartPort: defaultStartPort,
			EndPort:   defaultEndPort,
			Quiet:     false,
			IPv6:      false,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9090",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	// Cross-field checks the struct tags cannot express.
	if c.Scanning.StartPort > c.Scanning.EndPort {
		return fmt.Errorf("start port %d is greater than end port %d",
			c.Scanning.StartPort, c.Scanning.EndPort)
	}

	validLogLevels := map[logging.LogLevel]bool{
		logging.LevelDebug: true,
		logging.LevelInfo:  true,
		logging.LevelWarn:  true,
		logging.LevelError: true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[logging.LogFormat]bool{
		logging.FormatText: true,
		logging.FormatJSON: true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// MetricsAddress returns the metrics listen address, or "" when disabled.
func (c *Config) MetricsAddress() string {
	if !c.Metrics.Enabled {
		return ""
	}
	return c.Metrics.ListenAddr
}
