package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/stockwatch/internal/api"
	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/stream"
	"github.com/nhle/stockwatch/internal/ui/portfolio"
)

// opTimeout bounds every command-driven server call.
const opTimeout = 10 * time.Second

// Messages produced by background services and async commands.
type (
	sessionChangedMsg  struct{ active bool }
	streamStatusMsg    struct{ status stream.Status }
	notifyChangedMsg   struct{}
	feedSyncRequestMsg struct{}
	priceChangedMsg    struct {
		symbol string
		price  float64
	}
	toastMsg      struct{ notification model.Notification }
	toastClearMsg struct{}

	cacheLoadedMsg struct {
		quotes        []model.Quote
		notifications []model.Notification
	}
	watchlistLoadedMsg struct {
		items  []model.WatchlistItem
		quotes []model.Quote
		err    error
	}
	restoreFailedMsg  struct{}
	loginResultMsg    struct{ err error }
	registerResultMsg struct{ err error }
	profileLoadedMsg  struct{ username string }
	actionDoneMsg     struct {
		info            string
		reloadWatchlist bool
		reloadHoldings  bool
		err             error
	}
)

// restoreSession attempts to reactivate a persisted session. The gate's
// change listener delivers the result when restoration succeeds; a
// definitive "stay signed out" is reported directly so the login form
// comes up without waiting.
func (m *Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		m.gate.Restore()
		if !m.gate.Active() {
			return restoreFailedMsg{}
		}
		return nil
	}
}

// loadCachedSnapshot reads the offline snapshot so the UI has data to
// show before the first fetch completes.
func (m *Model) loadCachedSnapshot() tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		items, err := cache.GetWatchlist(ctx)
		if err != nil {
			log.Printf("app: reading cached watchlist: %v", err)
		}
		quotes, err := cache.GetQuotes(ctx)
		if err != nil {
			log.Printf("app: reading cached quotes: %v", err)
		}
		notifs, err := cache.GetNotifications(ctx, false)
		if err != nil {
			log.Printf("app: reading cached notifications: %v", err)
		}
		return cacheLoadedMsg{
			quotes:        mergeCachedWatchlist(items, quotes),
			notifications: notifs,
		}
	}
}

// mergeCachedWatchlist arranges cached quotes in watchlist order,
// synthesizing a bare row for any watchlist symbol whose quote
// snapshot is missing. With no cached watchlist the quotes are shown
// as stored.
func mergeCachedWatchlist(items []model.WatchlistItem, quotes []model.Quote) []model.Quote {
	if len(items) == 0 {
		return quotes
	}

	bySymbol := make(map[string]model.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	merged := make([]model.Quote, 0, len(items))
	for _, item := range items {
		if q, ok := bySymbol[item.Symbol]; ok {
			merged = append(merged, q)
			continue
		}
		merged = append(merged, model.Quote{Symbol: item.Symbol, Name: item.Name})
	}
	return merged
}

// verifySession confirms the restored token against the server and
// surfaces the signed-in identity. A 401 here routes through the
// client's unauthorized callback and deactivates the gate.
func (m *Model) verifySession() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		profile, err := client.Profile(ctx)
		if err != nil {
			log.Printf("app: verifying session: %v", err)
			return nil
		}
		return profileLoadedMsg{username: profile.Username}
	}
}

// loadWatchlist fetches the watchlist and the quotes for its symbols.
func (m *Model) loadWatchlist() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		items, err := client.Watchlist(ctx)
		if err != nil {
			return watchlistLoadedMsg{err: err}
		}
		if len(items) == 0 {
			return watchlistLoadedMsg{}
		}

		symbols := make([]string, len(items))
		for i, item := range items {
			symbols[i] = item.Symbol
		}

		quotes, err := client.Quotes(ctx, symbols)
		if err != nil {
			return watchlistLoadedMsg{err: err}
		}
		return watchlistLoadedMsg{items: items, quotes: quotes}
	}
}

// loadHoldings fetches the portfolio holdings and performance summary.
func (m *Model) loadHoldings() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		holdings, err := client.Holdings(ctx)
		if err != nil {
			log.Printf("app: loading holdings: %v", err)
			return portfolio.HoldingsLoadedMsg{}
		}
		perf, err := client.Performance(ctx)
		if err != nil {
			log.Printf("app: loading performance: %v", err)
		}
		return portfolio.HoldingsLoadedMsg{Holdings: holdings, Performance: perf}
	}
}

// syncFeed re-fetches the notification list from the server. The
// store's change callback delivers the refreshed state to the UI.
func (m *Model) syncFeed() tea.Cmd {
	ns := m.notify
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := ns.Refresh(ctx, false); err != nil {
			log.Printf("app: syncing notifications: %v", err)
		}
		return nil
	}
}

// persistFeed writes the current notification feed to the snapshot cache.
func (m *Model) persistFeed(feed []model.Notification) tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := cache.ReplaceNotifications(ctx, feed); err != nil {
			log.Printf("app: caching notifications: %v", err)
		}
		return nil
	}
}

// persistQuotes writes the current quotes to the snapshot cache.
func (m *Model) persistQuotes(quotes []model.Quote) tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := cache.SaveQuotes(ctx, quotes); err != nil {
			log.Printf("app: caching quotes: %v", err)
		}
		return nil
	}
}

// persistWatchlist writes the current watchlist to the snapshot cache.
func (m *Model) persistWatchlist(items []model.WatchlistItem) tea.Cmd {
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := cache.ReplaceWatchlist(ctx, items); err != nil {
			log.Printf("app: caching watchlist: %v", err)
		}
		return nil
	}
}

// doLogin runs the login exchange off the UI loop.
func (m *Model) doLogin(email, password string) tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return loginResultMsg{err: gate.Login(ctx, email, password)}
	}
}

// doRegister creates an account and then signs in with the same
// credentials.
func (m *Model) doRegister(username, email, password string) tea.Cmd {
	gate := m.gate
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.Register(ctx, username, email, password); err != nil {
			return registerResultMsg{err: err}
		}
		return loginResultMsg{err: gate.Login(ctx, email, password)}
	}
}

// addSymbol resolves the input to a quotable instrument and adds it to
// the server-side watchlist. Input that is not a known symbol falls
// back to a name search; a symbol already present is reported without
// a second add.
func (m *Model) addSymbol(symbol string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if already, err := client.InWatchlist(ctx, symbol); err == nil && already {
			return actionDoneMsg{info: symbol + " is already on the watchlist"}
		}

		quote, err := client.Quote(ctx, symbol)
		if errors.Is(err, api.ErrNotFound) {
			matches, searchErr := client.SearchStocks(ctx, symbol)
			if searchErr != nil {
				return actionDoneMsg{err: fmt.Errorf("searching %s: %w", symbol, searchErr)}
			}
			if len(matches) == 0 {
				return actionDoneMsg{err: fmt.Errorf("no instrument matches %q", symbol)}
			}
			quote = &matches[0]
		} else if err != nil {
			return actionDoneMsg{err: fmt.Errorf("looking up %s: %w", symbol, err)}
		}

		if err := client.AddToWatchlist(ctx, quote.Symbol, quote.Name); err != nil {
			return actionDoneMsg{err: fmt.Errorf("adding %s: %w", quote.Symbol, err)}
		}
		return actionDoneMsg{info: quote.Symbol + " added", reloadWatchlist: true}
	}
}

// removeSymbol removes a symbol from the server-side watchlist.
func (m *Model) removeSymbol(symbol string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.RemoveFromWatchlist(ctx, symbol); err != nil {
			return actionDoneMsg{err: fmt.Errorf("removing %s: %w", symbol, err)}
		}
		return actionDoneMsg{info: symbol + " removed", reloadWatchlist: true}
	}
}

// addHolding records a new portfolio position.
func (m *Model) addHolding(symbol string, shares, buyPrice float64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.AddHolding(ctx, symbol, shares, buyPrice); err != nil {
			return actionDoneMsg{err: fmt.Errorf("adding position %s: %w", symbol, err)}
		}
		return actionDoneMsg{info: symbol + " position added", reloadHoldings: true}
	}
}

// removeHolding deletes a portfolio position by id.
func (m *Model) removeHolding(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.RemoveHolding(ctx, id); err != nil {
			return actionDoneMsg{err: fmt.Errorf("removing position: %w", err)}
		}
		return actionDoneMsg{info: "position removed", reloadHoldings: true}
	}
}

// createAlert registers a price alert at the symbol's current price.
func (m *Model) createAlert(symbol string, price float64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := client.CreateAlert(ctx, symbol, price, "above"); err != nil {
			return actionDoneMsg{err: fmt.Errorf("creating alert for %s: %w", symbol, err)}
		}
		return actionDoneMsg{info: fmt.Sprintf("alert set: %s above %.2f", symbol, price)}
	}
}

// markRead marks one notification read through the store.
func (m *Model) markRead(id string) tea.Cmd {
	ns := m.notify
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := ns.MarkAsRead(ctx, id); err != nil {
			return actionDoneMsg{err: err}
		}
		if err := cache.MarkNotificationRead(ctx, id); err != nil {
			log.Printf("app: caching read state: %v", err)
		}
		return nil
	}
}

// markAllRead marks every unread notification read through the store.
func (m *Model) markAllRead() tea.Cmd {
	ns := m.notify
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := ns.MarkAllAsRead(ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{info: "all notifications read"}
	}
}

// clearToastLater removes the toast banner after a short display window.
func (m *Model) clearToastLater() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return toastClearMsg{}
	})
}
