package store

import (
	"context"

	"github.com/nhle/stockwatch/internal/model"
)

// Store is the local snapshot cache. It holds the most recent
// server-fetched view of quotes, notifications, and the watchlist so
// the app has something to render before the first fetch completes
// (or when the backend is unreachable). Every write replaces the
// previous snapshot for its collection; the cache never merges.
type Store interface {
	SaveQuotes(ctx context.Context, quotes []model.Quote) error
	GetQuotes(ctx context.Context) ([]model.Quote, error)

	ReplaceNotifications(ctx context.Context, notifications []model.Notification) error
	GetNotifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	ReplaceWatchlist(ctx context.Context, items []model.WatchlistItem) error
	GetWatchlist(ctx context.Context) ([]model.WatchlistItem, error)

	Close() error
}
