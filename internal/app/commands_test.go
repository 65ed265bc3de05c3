package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/stockwatch/internal/model"
)

func TestMergeCachedWatchlistFollowsWatchlistOrder(t *testing.T) {
	items := []model.WatchlistItem{
		{Symbol: "TSLA", Name: "Tesla Inc"},
		{Symbol: "AAPL", Name: "Apple Inc"},
	}
	quotes := []model.Quote{
		{Symbol: "AAPL", Name: "Apple Inc", Price: 150.25},
		{Symbol: "TSLA", Name: "Tesla Inc", Price: 250.10},
	}

	merged := mergeCachedWatchlist(items, quotes)

	require.Len(t, merged, 2)
	assert.Equal(t, "TSLA", merged[0].Symbol)
	assert.Equal(t, 250.10, merged[0].Price)
	assert.Equal(t, "AAPL", merged[1].Symbol)
}

func TestMergeCachedWatchlistSynthesizesMissingQuotes(t *testing.T) {
	items := []model.WatchlistItem{
		{Symbol: "AAPL", Name: "Apple Inc"},
		{Symbol: "NVDA", Name: "NVIDIA Corp"},
	}
	quotes := []model.Quote{
		{Symbol: "AAPL", Name: "Apple Inc", Price: 150.25},
	}

	merged := mergeCachedWatchlist(items, quotes)

	require.Len(t, merged, 2)
	assert.Equal(t, "NVDA", merged[1].Symbol)
	assert.Equal(t, "NVIDIA Corp", merged[1].Name)
	assert.Zero(t, merged[1].Price, "no snapshot yet for the synthesized row")
}

func TestMergeCachedWatchlistWithoutWatchlistKeepsQuotes(t *testing.T) {
	quotes := []model.Quote{
		{Symbol: "AAPL", Price: 150.25},
	}

	merged := mergeCachedWatchlist(nil, quotes)

	assert.Equal(t, quotes, merged)
}
