// Package testutil provides the shared snapshot-cache helper and
// domain fixtures used by tests across packages.
package testutil

import (
	"testing"
	"time"

	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/store"
)

// NewTestStore opens an in-memory snapshot cache with all migrations
// applied and closes it when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory cache: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing cache: %v", err)
		}
	})

	return s
}

// LiveQuote builds a real-time quote fixture.
func LiveQuote(symbol string, price float64) model.Quote {
	return model.Quote{
		Symbol:    symbol,
		Name:      symbol + " Inc",
		Price:     price,
		RealTime:  true,
		UpdatedAt: time.Now().UTC(),
	}
}

// DelayedQuote builds a quote fixture flagged as delayed data.
func DelayedQuote(symbol string, price float64) model.Quote {
	q := LiveQuote(symbol, price)
	q.RealTime = false
	return q
}

// Notification builds a plain informational notification fixture.
func Notification(id string, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Title:     "title " + id,
		Message:   "message " + id,
		Kind:      model.KindInfo,
		Priority:  model.PriorityNormal,
		Read:      read,
		CreatedAt: time.Now().UTC(),
	}
}

// WatchlistEntry builds a watchlist fixture.
func WatchlistEntry(symbol, name string) model.WatchlistItem {
	return model.WatchlistItem{
		Symbol:  symbol,
		Name:    name,
		AddedAt: time.Now().UTC(),
	}
}
