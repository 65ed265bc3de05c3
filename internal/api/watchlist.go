package api

import (
	"context"
	"net/url"

	"github.com/nhle/stockwatch/internal/model"
)

// Watchlist retrieves the user's watchlist.
func (c *Client) Watchlist(ctx context.Context) ([]model.WatchlistItem, error) {
	var payloads []watchlistPayload
	if err := c.get(ctx, "/watchlist", &payloads); err != nil {
		return nil, err
	}

	items := make([]model.WatchlistItem, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, p.toModel())
	}
	return items, nil
}

type addWatchlistRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// AddToWatchlist adds a symbol to the user's watchlist.
func (c *Client) AddToWatchlist(ctx context.Context, symbol, name string) error {
	return c.post(ctx, "/watchlist", addWatchlistRequest{Symbol: symbol, Name: name}, nil)
}

// RemoveFromWatchlist removes a symbol from the user's watchlist.
func (c *Client) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	return c.delete(ctx, "/watchlist/"+url.PathEscape(symbol))
}

// InWatchlist reports whether a symbol is already on the watchlist.
func (c *Client) InWatchlist(ctx context.Context, symbol string) (bool, error) {
	var payload struct {
		InWatchlist bool `json:"in_watchlist"`
	}
	err := c.get(ctx, "/watchlist/"+url.PathEscape(symbol)+"/check", &payload)
	if err != nil {
		return false, err
	}
	return payload.InWatchlist, nil
}
