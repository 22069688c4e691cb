package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the persisted TOML configuration.
type Config struct {
	Channel ChannelConfig `toml:"channel"`
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

// ChannelConfig holds the push-channel transport settings.
type ChannelConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	UpdatesTopic string `toml:"updates_topic"`
	AlertsTopic  string `toml:"alerts_topic"`
	SyncTopic    string `toml:"sync_topic"`
	LegacyTopic  string `toml:"legacy_topic"`
}

// APIConfig holds the item-creation API settings.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// UIConfig holds presentation-only settings. LowStockAccent only affects row
// coloring on the dashboard; the notification rules keep their fixed
// thresholds.
type UIConfig struct {
	MaxToasts      int  `toml:"max_toasts"`
	LowStockAccent int  `toml:"low_stock_accent"`
	ShowHelp       bool `toml:"show_help"`
}

// LoggingConfig holds runtime logging settings.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig enables the dev-mode file sink.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Channel: ChannelConfig{
			Addr:         "localhost:6379",
			UpdatesTopic: "inventory:updates",
			AlertsTopic:  "inventory:alerts",
			SyncTopic:    "inventory:sync",
			LegacyTopic:  "item:updated",
		},
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 10,
		},
		UI: UIConfig{
			MaxToasts:      5,
			LowStockAccent: 5,
			ShowHelp:       true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
	}
}

// Load reads a TOML config file over the given defaults. A missing or empty
// file yields the defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Channel.Addr) == "" {
		return errors.New("channel.addr is required")
	}
	if c.Channel.DB < 0 {
		return fmt.Errorf("channel.db must be >= 0, got %d", c.Channel.DB)
	}
	topics := map[string]string{
		"channel.updates_topic": c.Channel.UpdatesTopic,
		"channel.alerts_topic":  c.Channel.AlertsTopic,
		"channel.sync_topic":    c.Channel.SyncTopic,
		"channel.legacy_topic":  c.Channel.LegacyTopic,
	}
	seen := map[string]string{}
	for key, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			return fmt.Errorf("%s is required", key)
		}
		if other, ok := seen[topic]; ok {
			return fmt.Errorf("%s duplicates %s: %q", key, other, topic)
		}
		seen[topic] = key
	}

	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("api.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url is not a valid URL: %q", base)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must be >= 0, got %d", c.API.TimeoutSeconds)
	}

	if c.UI.MaxToasts < 1 {
		return fmt.Errorf("ui.max_toasts must be >= 1, got %d", c.UI.MaxToasts)
	}
	if c.UI.LowStockAccent < 0 {
		return fmt.Errorf("ui.low_stock_accent must be >= 0, got %d", c.UI.LowStockAccent)
	}

	return nil
}

// EnsureConfigDir creates the directory holding the config file.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
