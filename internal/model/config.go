package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the backend REST API.
type APIConfig struct {
	// BaseURL is the root URL of the stock-analyzer API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every individual request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// StreamConfig holds settings for the notification event stream.
type StreamConfig struct {
	// URL is the WebSocket endpoint of the notification server.
	URL string `mapstructure:"url" yaml:"url"`

	// ReconnectAttempts bounds automatic reconnects after an
	// unexpected drop before an explicit reconnect is required.
	ReconnectAttempts int `mapstructure:"reconnect_attempts" yaml:"reconnect_attempts"`

	// ReconnectDelaySec is the fixed delay between reconnect attempts.
	ReconnectDelaySec int `mapstructure:"reconnect_delay_sec" yaml:"reconnect_delay_sec"`
}

// RefreshConfig holds the cadence of the background refresh loops.
type RefreshConfig struct {
	// QuoteIntervalSec is how often live watchlist prices are refreshed.
	QuoteIntervalSec int `mapstructure:"quote_interval_sec" yaml:"quote_interval_sec"`

	// QuoteInitialDelaySec delays the first refresh pass after startup.
	QuoteInitialDelaySec int `mapstructure:"quote_initial_delay_sec" yaml:"quote_initial_delay_sec"`

	// QuoteSpacingMS is the gap between consecutive quote fetches
	// within a single refresh pass.
	QuoteSpacingMS int `mapstructure:"quote_spacing_ms" yaml:"quote_spacing_ms"`

	// UnreadCountIntervalSec is how often the unread notification
	// count is re-fetched, independent of the event stream.
	UnreadCountIntervalSec int `mapstructure:"unread_count_interval_sec" yaml:"unread_count_interval_sec"`
}

// CacheConfig holds settings for the local snapshot cache.
type CacheConfig struct {
	// DBPath is the SQLite file used to render last-known data at
	// startup before the first fetch completes.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Stream  StreamConfig  `mapstructure:"stream" yaml:"stream"`
	Refresh RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/stockwatch/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "stockwatch", "config.yaml")
}

// defaultDBPath returns the default SQLite cache location.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "stockwatch.db")
	}
	return filepath.Join(home, ".config", "stockwatch", "cache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:5000/api",
			TimeoutSec: 10,
		},
		Stream: StreamConfig{
			URL:               "ws://localhost:5000/ws",
			ReconnectAttempts: 5,
			ReconnectDelaySec: 1,
		},
		Refresh: RefreshConfig{
			QuoteIntervalSec:       30,
			QuoteInitialDelaySec:   5,
			QuoteSpacingMS:         500,
			UnreadCountIntervalSec: 30,
		},
		Cache: CacheConfig{
			DBPath: defaultDBPath(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout_sec", 10)
	v.SetDefault("stream.url", "ws://localhost:5000/ws")
	v.SetDefault("stream.reconnect_attempts", 5)
	v.SetDefault("stream.reconnect_delay_sec", 1)
	v.SetDefault("refresh.quote_interval_sec", 30)
	v.SetDefault("refresh.quote_initial_delay_sec", 5)
	v.SetDefault("refresh.quote_spacing_ms", 500)
	v.SetDefault("refresh.unread_count_interval_sec", 30)
	v.SetDefault("cache.db_path", defaultDBPath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("stream", cfg.Stream)
	v.Set("refresh", cfg.Refresh)
	v.Set("cache", cfg.Cache)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
