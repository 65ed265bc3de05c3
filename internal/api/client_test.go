package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func newTestClient(srv *httptest.Server, token string, onUnauthorized func()) *Client {
	return NewClient(srv.URL, 2*time.Second, func() string { return token }, onUnauthorized)
}

func TestEnvelopeUnwrapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		respond(w, http.StatusOK, `{"success": true, "data": {"symbol": "AAPL", "price": 150.25, "is_real_time": true}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "tok123", nil)

	quote, err := c.Quote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 150.25, quote.Price)
	assert.True(t, quote.RealTime)
}

func TestErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusBadRequest, `{"success": false, "error": "symbol required"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	_, err := c.Quote(context.Background(), "AAPL")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol required")
}

func TestUnauthorizedTriggersCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnauthorized, `{"success": false, "error": "token expired"}`)
	}))
	defer srv.Close()

	var callbacks atomic.Int32
	c := newTestClient(srv, "stale", func() { callbacks.Add(1) })

	_, err := c.Notifications(context.Background(), false)

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, int32(1), callbacks.Load())
}

func TestNotFoundIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, `{"success": false, "error": "unknown symbol"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	_, err := c.Quote(context.Background(), "NOPE")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestRateLimitRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			respond(w, http.StatusTooManyRequests, `{"success": false, "error": "slow down"}`)
			return
		}
		respond(w, http.StatusOK, `{"success": true, "data": 3}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	count, err := c.UnreadCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestNotificationsDecodeWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("unread_only"))
		respond(w, http.StatusOK, `{"success": true, "data": [
			{"_id": "n1", "title": "Welcome", "message": "hi", "type": "success", "read": false, "created_at": "2026-08-30T12:00:00"},
			{"_id": "n2", "title": "Alert", "message": "AAPL above 150", "type": "price_alert", "priority": "high", "symbol": "AAPL", "read": false, "created_at": "2026-08-30T13:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	got, err := c.Notifications(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, "normal", got[0].Priority, "missing priority defaults to normal")
	assert.False(t, got[0].CreatedAt.IsZero(), "timezone-less timestamps still parse")
	assert.Equal(t, "high", got[1].Priority)
	assert.Equal(t, "AAPL", got[1].Symbol)
}

func TestQuotesJoinsSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL,TSLA", r.URL.Query().Get("symbols"))
		respond(w, http.StatusOK, `{"success": true, "data": [
			{"symbol": "AAPL", "price": 150},
			{"symbol": "TSLA", "price": 250}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	quotes, err := c.Quotes(context.Background(), []string{"AAPL", "TSLA"})

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 250.0, quotes[1].Price)
}

func TestSearchStocksPassesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stocks/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		respond(w, http.StatusOK, `{"success": true, "data": [
			{"symbol": "AAPL", "name": "Apple Inc", "price": 150.25}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	matches, err := c.SearchStocks(context.Background(), "apple")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "AAPL", matches[0].Symbol)
	assert.Equal(t, "Apple Inc", matches[0].Name)
}

func TestProfileReturnsAccountRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		respond(w, http.StatusOK, `{"success": true, "data": {"user_id": "u1", "username": "alice", "email": "alice@example.com"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "tok123", nil)

	sess, err := c.Profile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "alice@example.com", sess.Email)
}

func TestInWatchlistCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/watchlist/AAPL/check", r.URL.Path)
		respond(w, http.StatusOK, `{"success": true, "data": {"in_watchlist": true}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	in, err := c.InWatchlist(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.True(t, in)
}

func TestAddHoldingPostsPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/portfolio/holdings", r.URL.Path)

		var body struct {
			Symbol   string  `json:"symbol"`
			Shares   float64 `json:"shares"`
			BuyPrice float64 `json:"buy_price"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MSFT", body.Symbol)
		assert.Equal(t, 3.0, body.Shares)
		assert.Equal(t, 410.0, body.BuyPrice)

		respond(w, http.StatusCreated, `{"success": true, "data": null}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	err := c.AddHolding(context.Background(), "MSFT", 3, 410)

	require.NoError(t, err)
}

func TestRemoveHoldingDeletesByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/portfolio/holdings/h42", r.URL.Path)
		respond(w, http.StatusOK, `{"success": true, "data": null}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	err := c.RemoveHolding(context.Background(), "h42")

	require.NoError(t, err)
}

func TestNullDataIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"success": true, "data": null}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, "", nil)

	err := c.MarkRead(context.Background(), "n1")

	require.NoError(t, err)
}

func TestDecodePushedNotification(t *testing.T) {
	data := json.RawMessage(`{"_id": "n9", "title": "t", "message": "m", "type": "warning", "read": false}`)

	n, err := DecodeNotification(data)

	require.NoError(t, err)
	assert.Equal(t, "n9", n.ID)
	assert.Equal(t, "warning", string(n.Kind))
}

func TestDecodePriceAlert(t *testing.T) {
	data := json.RawMessage(`{"symbol": "TSLA", "condition": "below", "target_price": 180.5}`)

	e, err := DecodePriceAlert(data)

	require.NoError(t, err)
	assert.Equal(t, "TSLA", e.Symbol)
	assert.Equal(t, "below", e.Condition)
	assert.Equal(t, 180.5, e.TargetPrice)
}
