package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/tests/testutil"
)

func TestSaveAndGetQuotes(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	quotes := []model.Quote{
		{
			Symbol:        "TSLA",
			Name:          "Tesla Inc",
			Price:         250.10,
			PreviousClose: 245.00,
			Change:        5.10,
			ChangePercent: 2.08,
			Volume:        1000000,
			RealTime:      true,
			UpdatedAt:     time.Now().UTC(),
		},
		testutil.DelayedQuote("AAPL", 150.25),
	}

	require.NoError(t, s.SaveQuotes(ctx, quotes))

	got, err := s.GetQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Symbol, "quotes come back sorted by symbol")
	assert.Equal(t, "TSLA", got[1].Symbol)
	assert.Equal(t, 250.10, got[1].Price)
	assert.True(t, got[1].RealTime)
	assert.False(t, got[0].RealTime)
}

func TestSaveQuotesUpserts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveQuotes(ctx, []model.Quote{
		testutil.LiveQuote("AAPL", 150),
		testutil.LiveQuote("TSLA", 250),
	}))

	// A later partial batch updates AAPL but must not erase TSLA.
	require.NoError(t, s.SaveQuotes(ctx, []model.Quote{
		testutil.LiveQuote("AAPL", 151),
	}))

	got, err := s.GetQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 151.0, got[0].Price)
	assert.Equal(t, 250.0, got[1].Price)
}

func TestReplaceNotificationsPreservesOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := []model.Notification{
		{ID: "old", Message: "stale", CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, s.ReplaceNotifications(ctx, first))

	second := []model.Notification{
		{ID: "n2", Title: "second", Message: "m2", Kind: model.KindWarning, Priority: model.PriorityHigh, CreatedAt: time.Now().UTC()},
		{ID: "n1", Title: "first", Message: "m1", Kind: model.KindInfo, Priority: model.PriorityNormal, Read: true, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, s.ReplaceNotifications(ctx, second))

	got, err := s.GetNotifications(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 2, "replace drops the previous snapshot")
	assert.Equal(t, "n2", got[0].ID, "stored order is the given order")
	assert.Equal(t, model.KindWarning, got[0].Kind)
	assert.Equal(t, model.PriorityHigh, got[0].Priority)
	assert.True(t, got[1].Read)
}

func TestGetNotificationsUnreadOnly(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, []model.Notification{
		testutil.Notification("a", false),
		testutil.Notification("b", true),
		testutil.Notification("c", false),
	}))

	got, err := s.GetNotifications(ctx, true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestMarkNotificationRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotifications(ctx, []model.Notification{
		testutil.Notification("a", false),
	}))

	require.NoError(t, s.MarkNotificationRead(ctx, "a"))

	got, err := s.GetNotifications(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Read)
}

func TestReplaceAndGetWatchlist(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceWatchlist(ctx, []model.WatchlistItem{
		testutil.WatchlistEntry("TSLA", "Tesla Inc"),
		testutil.WatchlistEntry("AAPL", "Apple Inc"),
	}))

	require.NoError(t, s.ReplaceWatchlist(ctx, []model.WatchlistItem{
		testutil.WatchlistEntry("NVDA", "NVIDIA Corp"),
	}))

	got, err := s.GetWatchlist(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "replace swaps the snapshot")
	assert.Equal(t, "NVDA", got[0].Symbol)
	assert.Equal(t, "NVIDIA Corp", got[0].Name)
}

func TestEmptyStoreReads(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	quotes, err := s.GetQuotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, quotes)

	notifs, err := s.GetNotifications(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, notifs)

	items, err := s.GetWatchlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
