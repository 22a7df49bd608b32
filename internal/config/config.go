// Package config provides YAML-based configuration for the session client and
// the reference store server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// Remote store endpoints used by the client
	Remote RemoteConfig `yaml:"remote"`

	// Media URL layout
	Media MediaConfig `yaml:"media"`

	// Chart view bounds and output size
	Chart ChartConfig `yaml:"chart"`

	// Media selection behaviour
	Selection SelectionConfig `yaml:"selection"`

	// Reference store server
	Server ServerConfig `yaml:"server"`

	// Logging output
	Logging LoggingConfig `yaml:"logging"`
}

// RemoteConfig contains the session store connection settings
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url"`
	ReadPath       string `yaml:"read_path"`
	MutatePath     string `yaml:"mutate_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Codec          string `yaml:"codec"` // json or msgpack
}

// MediaConfig contains media URL settings
type MediaConfig struct {
	ImagePath string `yaml:"image_path"`
	Dir       string `yaml:"dir"` // served under image_path by the reference server; empty disables
}

// ChartConfig contains chart settings
type ChartConfig struct {
	YMin   float64 `yaml:"y_min"`
	YMax   float64 `yaml:"y_max"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// SelectionConfig contains media selection settings
type SelectionConfig struct {
	VerifyToggle bool `yaml:"verify_toggle"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int    `yaml:"port"`
	BindAddress          string `yaml:"bind_address"`
	ReadTimeout          int    `yaml:"read_timeout_seconds"`
	WriteTimeout         int    `yaml:"write_timeout_seconds"`
	IdleTimeout          int    `yaml:"idle_timeout_seconds"`
	BodyLimit            string `yaml:"body_limit"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Remote: RemoteConfig{
			BaseURL:        "http://localhost:8089",
			ReadPath:       "/cookfiledata",
			MutatePath:     "/updatecookfile",
			TimeoutSeconds: 30,
			Codec:          "json",
		},
		Media: MediaConfig{
			ImagePath: "/static/img/cookfile/",
		},
		Chart: ChartConfig{
			YMin:   -30,
			YMax:   600,
			Width:  1024,
			Height: 480,
		},
		Selection: SelectionConfig{
			VerifyToggle: true,
		},
		Server: ServerConfig{
			Port:                 8089,
			BindAddress:          "0.0.0.0",
			ReadTimeout:          30,
			WriteTimeout:         30,
			IdleTimeout:          120,
			BodyLimit:            "8M",
			EnableRequestLogging: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Cook session viewer configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would make the client misbehave
func (c *AppConfig) Validate() error {
	switch c.Remote.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("remote.codec must be json or msgpack, got %q", c.Remote.Codec)
	}
	if c.Chart.YMax <= c.Chart.YMin {
		return fmt.Errorf("chart.y_max (%v) must be above chart.y_min (%v)", c.Chart.YMax, c.Chart.YMin)
	}
	if !strings.HasPrefix(c.Media.ImagePath, "/") || !strings.HasSuffix(c.Media.ImagePath, "/") {
		return fmt.Errorf("media.image_path must start and end with /, got %q", c.Media.ImagePath)
	}
	if c.Remote.TimeoutSeconds < 0 {
		return fmt.Errorf("remote.timeout_seconds must not be negative")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if baseURL := os.Getenv("COOKFILE_BASE_URL"); baseURL != "" {
		c.Remote.BaseURL = baseURL
	}

	if codec := os.Getenv("COOKFILE_CODEC"); codec != "" {
		c.Remote.Codec = strings.ToLower(codec)
	}

	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if file := os.Getenv("LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(configDir, c.Logging.File)
	}
	if c.Media.Dir != "" && !filepath.IsAbs(c.Media.Dir) {
		c.Media.Dir = filepath.Join(configDir, c.Media.Dir)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// RequestTimeout returns the client request timeout
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}
