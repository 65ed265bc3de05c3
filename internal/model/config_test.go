package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Stream.ReconnectAttempts)
	assert.Equal(t, 1, cfg.Stream.ReconnectDelaySec)
	assert.Equal(t, 30, cfg.Refresh.QuoteIntervalSec)
	assert.Equal(t, 5, cfg.Refresh.QuoteInitialDelaySec)
	assert.Equal(t, 500, cfg.Refresh.QuoteSpacingMS)
	assert.Equal(t, 30, cfg.Refresh.UnreadCountIntervalSec)
	assert.NotEmpty(t, cfg.Cache.DBPath)
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.API.BaseURL = "https://stocks.example.com/api"
	cfg.Stream.URL = "wss://stocks.example.com/ws"
	cfg.Refresh.QuoteIntervalSec = 60

	require.NoError(t, SaveConfig(path, cfg))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://stocks.example.com/api", reloaded.API.BaseURL)
	assert.Equal(t, "wss://stocks.example.com/ws", reloaded.Stream.URL)
	assert.Equal(t, 60, reloaded.Refresh.QuoteIntervalSec)
	assert.Equal(t, 500, reloaded.Refresh.QuoteSpacingMS, "untouched fields keep defaults")
}
