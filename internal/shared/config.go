package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const maxWorkers = 64

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Providers ProvidersConfig `toml:"providers"`
	Fetch     FetchConfig     `toml:"fetch"`
	Aggregate AggregateConfig `toml:"aggregate"`
	Server    ServerConfig    `toml:"server"`
}

// ProvidersConfig contains per-provider endpoints.
type ProvidersConfig struct {
	Kugou   KugouConfig   `toml:"kugou"`
	Netease NeteaseConfig `toml:"netease"`
}

// KugouConfig contains Kugou hosts. Overridable so tests can point them at a local server.
type KugouConfig struct {
	WebURL    string `toml:"web_url"`
	H5URL     string `toml:"h5_url"`
	CDNURL    string `toml:"cdn_url"`
	UserAgent string `toml:"user_agent"`
}

// NeteaseConfig contains the Netease host and listing defaults.
type NeteaseConfig struct {
	Host      string `toml:"host"`
	UserAgent string `toml:"user_agent"`
	Order     string `toml:"order"`
	Limit     int    `toml:"limit"`
}

// FetchConfig controls the per-playlist track fan-out.
type FetchConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
	FailFast  bool    `toml:"fail_fast"`
	Timeout   int     `toml:"timeout"`
}

// AggregateConfig controls provider dispatch.
type AggregateConfig struct {
	DefaultProvider string `toml:"default_provider"`
	Strict          bool   `toml:"strict"`
}

// ServerConfig controls the HTTP facade started by `listenx serve`.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	WriteTimeout int    `toml:"write_timeout"`
}

// TimeoutDuration returns the per-request timeout, zero meaning the transport default.
func (f FetchConfig) TimeoutDuration() time.Duration {
	if f.Timeout <= 0 {
		return 0
	}
	return time.Duration(f.Timeout) * time.Second
}

// Validate checks value ranges that would otherwise surface as confusing runtime behavior.
func (c *Config) Validate() error {
	if c.Fetch.Workers < 0 || c.Fetch.Workers > maxWorkers {
		return fmt.Errorf("%w: fetch.workers must be between 0 and %d, got %d", ErrInvalidConfig, maxWorkers, c.Fetch.Workers)
	}
	if c.Fetch.RateLimit < 0 {
		return fmt.Errorf("%w: fetch.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("%w: server.write_timeout must not be negative", ErrInvalidConfig)
	}
	if c.Providers.Netease.Limit < 0 {
		return fmt.Errorf("%w: providers.netease.limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
