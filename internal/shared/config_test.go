package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Providers.Kugou.H5URL != "https://m.kugou.com" {
			t.Errorf("expected kugou h5 url https://m.kugou.com, got %s", config.Providers.Kugou.H5URL)
		}

		if config.Providers.Netease.Host != "https://music.163.com" {
			t.Errorf("expected netease host https://music.163.com, got %s", config.Providers.Netease.Host)
		}

		if config.Providers.Netease.Limit != 35 {
			t.Errorf("expected netease limit 35, got %d", config.Providers.Netease.Limit)
		}

		if config.Fetch.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", config.Fetch.Workers)
		}

		if config.Fetch.FailFast {
			t.Error("expected partial mode by default")
		}

		if config.Aggregate.DefaultProvider != "kugou" {
			t.Errorf("expected default provider kugou, got %s", config.Aggregate.DefaultProvider)
		}

		if config.Fetch.TimeoutDuration() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Fetch.TimeoutDuration())
		}

		if config.Server.Addr != "127.0.0.1:8080" {
			t.Errorf("expected server addr 127.0.0.1:8080, got %s", config.Server.Addr)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Providers.Kugou.CDNURL != defaultConfig.Providers.Kugou.CDNURL {
			t.Errorf("created config kugou cdn url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[providers.kugou]
h5_url = "http://127.0.0.1:9000"

[fetch]
workers = 4
rate_limit = 2.5
fail_fast = true
timeout = 0

[aggregate]
strict = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Providers.Kugou.H5URL != "http://127.0.0.1:9000" {
			t.Errorf("expected overridden h5 url, got %s", config.Providers.Kugou.H5URL)
		}

		if config.Providers.Kugou.CDNURL != "http://mobilecdnbj.kugou.com" {
			t.Errorf("expected default cdn url to survive partial file, got %s", config.Providers.Kugou.CDNURL)
		}

		if config.Fetch.Workers != 4 || config.Fetch.RateLimit != 2.5 || !config.Fetch.FailFast {
			t.Errorf("unexpected fetch config %+v", config.Fetch)
		}

		if config.Fetch.TimeoutDuration() != 0 {
			t.Errorf("expected zero timeout, got %v", config.Fetch.TimeoutDuration())
		}

		if !config.Aggregate.Strict {
			t.Error("expected strict dispatch")
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[fetch]\nworkers = 1000\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Fetch.Workers = 2

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Fetch.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", loaded.Fetch.Workers)
		}
	})
}
