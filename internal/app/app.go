package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/stockwatch/internal/api"
	"github.com/nhle/stockwatch/internal/credential"
	"github.com/nhle/stockwatch/internal/keys"
	"github.com/nhle/stockwatch/internal/model"
	"github.com/nhle/stockwatch/internal/notify"
	"github.com/nhle/stockwatch/internal/prices"
	"github.com/nhle/stockwatch/internal/session"
	"github.com/nhle/stockwatch/internal/store"
	"github.com/nhle/stockwatch/internal/stream"
	"github.com/nhle/stockwatch/internal/ui"
	"github.com/nhle/stockwatch/internal/ui/login"
	"github.com/nhle/stockwatch/internal/ui/notifications"
	"github.com/nhle/stockwatch/internal/ui/portfolio"
	"github.com/nhle/stockwatch/internal/ui/watchlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewWatchlist
	ViewNotifications
	ViewPortfolio
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the lifecycle of the background services (event stream, price
// refresh, notification sync).
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap

	gate      *session.Gate
	client    *api.Client
	stream    *stream.Client
	notify    *notify.Store
	scheduler *prices.Scheduler
	cache     store.Store

	loginView login.Model
	watchlist watchlist.Model
	notifView notifications.Model
	portfolio portfolio.Model

	// events receives messages pushed by background goroutines
	// (stream handlers, service callbacks). The Bubble Tea loop drains
	// it one message at a time via waitForEvent.
	events chan tea.Msg

	ready       bool
	servicesOn  bool
	unreadCount int
	connected   bool
	toast       string
	statusLine  string
}

// New creates the root application model and wires the service graph:
// credential store, session gate, API client, event stream, notification
// store, and price scheduler.
func New(cfg *model.AppConfig, cache store.Store) *Model {
	k := keys.DefaultKeyMap()

	m := &Model{
		currentView: ViewLogin,
		keys:        k,
		cache:       cache,
		loginView:   login.New(80, 24),
		watchlist:   watchlist.New(k, 80, 24),
		notifView:   notifications.New(k, 80, 24),
		portfolio:   portfolio.New(k, 80, 24),
		events:      make(chan tea.Msg, 64),
	}

	gate := session.NewGate(credential.NewStore())
	client := api.NewClient(
		cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSec)*time.Second,
		gate.Token,
		gate.HandleUnauthorized,
	)
	gate.Bind(client)

	streamClient := stream.New(cfg.Stream.URL, stream.Options{
		MaxReconnectAttempts: cfg.Stream.ReconnectAttempts,
		ReconnectDelay:       time.Duration(cfg.Stream.ReconnectDelaySec) * time.Second,
	})

	notifyStore := notify.New(client, gate, notify.Options{
		CountInterval: time.Duration(cfg.Refresh.UnreadCountIntervalSec) * time.Second,
		OnChange:      func() { m.push(notifyChangedMsg{}) },
		OnToast:       func(n model.Notification) { m.push(toastMsg{notification: n}) },
	})

	scheduler := prices.New(client, gate, prices.Options{
		Interval:     time.Duration(cfg.Refresh.QuoteIntervalSec) * time.Second,
		InitialDelay: time.Duration(cfg.Refresh.QuoteInitialDelaySec) * time.Second,
		Spacing:      time.Duration(cfg.Refresh.QuoteSpacingMS) * time.Millisecond,
		OnChange: func(symbol string, price float64) {
			m.push(priceChangedMsg{symbol: symbol, price: price})
		},
	})

	gate.OnChange(func(active bool) {
		m.push(sessionChangedMsg{active: active})
	})
	streamClient.OnStatusChange(func(s stream.Status) {
		m.push(streamStatusMsg{status: s})
	})

	streamClient.Subscribe(stream.EventNewNotification, func(data json.RawMessage) {
		n, err := api.DecodeNotification(data)
		if err != nil {
			log.Printf("app: %v", err)
			return
		}
		notifyStore.IngestPushed(n)
	})
	streamClient.Subscribe(stream.EventNotificationUpdate, func(json.RawMessage) {
		// The server changed notification state elsewhere; re-fetch so
		// the local view converges.
		m.push(feedSyncRequestMsg{})
	})
	streamClient.Subscribe(stream.EventPriceAlert, func(data json.RawMessage) {
		e, err := api.DecodePriceAlert(data)
		if err != nil {
			log.Printf("app: %v", err)
			return
		}
		notifyStore.IngestAlert(e.Symbol, e.Condition, e.TargetPrice)
	})

	m.gate = gate
	m.client = client
	m.stream = streamClient
	m.notify = notifyStore
	m.scheduler = scheduler

	return m
}

// push queues a message for the UI loop without blocking the caller.
// If the buffer is full the message is dropped; every dropped message
// type is re-derivable from service state on the next event.
func (m *Model) push(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// waitForEvent blocks until a background event arrives.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Init restores any persisted session and starts draining background
// events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.restoreSession(), m.waitForEvent())
}

// startServices brings up the background machinery after a session
// becomes active.
func (m *Model) startServices() tea.Cmd {
	if m.servicesOn {
		return nil
	}
	m.servicesOn = true
	m.stream.Connect()
	m.notify.Start()
	m.scheduler.Start()
	return tea.Batch(
		m.loadCachedSnapshot(),
		m.verifySession(),
		m.loadWatchlist(),
		m.loadHoldings(),
	)
}

// stopServices tears the background machinery down on logout or forced
// deauthentication.
func (m *Model) stopServices() {
	if !m.servicesOn {
		return
	}
	m.servicesOn = false
	m.stream.Close()
	m.notify.Stop()
	m.scheduler.Stop()
}

// Update handles messages and dispatches to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.watchlist.SetSize(contentWidth, contentHeight)
		m.notifView.SetSize(contentWidth, contentHeight)
		m.portfolio.SetSize(contentWidth, contentHeight)
		return m.updateActiveView(msg)

	case restoreFailedMsg:
		m.currentView = ViewLogin
		return m, m.loginView.Start()

	case sessionChangedMsg:
		if msg.active {
			m.currentView = ViewWatchlist
			return m, tea.Batch(m.startServices(), m.waitForEvent())
		}
		m.stopServices()
		m.currentView = ViewLogin
		m.unreadCount = 0
		return m, tea.Batch(m.loginView.Start(), m.waitForEvent())

	case streamStatusMsg:
		m.connected = msg.status == stream.StatusConnected
		return m, m.waitForEvent()

	case notifyChangedMsg:
		m.unreadCount = m.notify.UnreadCount()
		feed := m.notify.Notifications()
		var cmd tea.Cmd
		m.notifView, cmd = m.notifView.Update(notifications.FeedUpdatedMsg{Notifications: feed})
		return m, tea.Batch(cmd, m.persistFeed(feed), m.waitForEvent())

	case feedSyncRequestMsg:
		return m, tea.Batch(m.syncFeed(), m.waitForEvent())

	case priceChangedMsg:
		quotes := m.scheduler.Snapshot()
		var cmd tea.Cmd
		m.watchlist, cmd = m.watchlist.Update(watchlist.QuotesUpdatedMsg{Quotes: quotes})
		return m, tea.Batch(cmd, m.persistQuotes(quotes), m.waitForEvent())

	case toastMsg:
		m.toast = msg.notification.Title
		return m, tea.Batch(m.clearToastLater(), m.waitForEvent())

	case toastClearMsg:
		m.toast = ""
		return m, nil

	case cacheLoadedMsg:
		// Only seed views that are still empty; live data wins.
		var cmds []tea.Cmd
		if len(msg.quotes) > 0 && len(m.scheduler.Snapshot()) == 0 {
			var cmd tea.Cmd
			m.watchlist, cmd = m.watchlist.Update(watchlist.QuotesUpdatedMsg{Quotes: msg.quotes})
			cmds = append(cmds, cmd)
		}
		if len(msg.notifications) > 0 && len(m.notify.Notifications()) == 0 {
			m.notify.Replace(msg.notifications)
		}
		return m, tea.Batch(cmds...)

	case watchlistLoadedMsg:
		if msg.err != nil {
			m.statusLine = fmt.Sprintf("watchlist: %v", msg.err)
			return m, nil
		}
		m.statusLine = ""
		m.scheduler.Track(msg.quotes)
		var cmd tea.Cmd
		m.watchlist, cmd = m.watchlist.Update(watchlist.QuotesUpdatedMsg{Quotes: msg.quotes})
		return m, tea.Batch(cmd, m.persistQuotes(msg.quotes), m.persistWatchlist(msg.items))

	case portfolio.HoldingsLoadedMsg:
		var cmd tea.Cmd
		m.portfolio, cmd = m.portfolio.Update(msg)
		return m, cmd

	case loginResultMsg:
		if msg.err != nil {
			return m, m.loginView.SetError(loginErrorText(msg.err))
		}
		// The session gate's change listener drives the view switch.
		return m, nil

	case registerResultMsg:
		if msg.err != nil {
			return m, m.loginView.SetError(fmt.Sprintf("registration failed: %v", msg.err))
		}
		m.statusLine = "account created, signing in..."
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusLine = msg.err.Error()
			return m, nil
		}
		m.statusLine = msg.info
		var cmds []tea.Cmd
		if msg.reloadWatchlist {
			cmds = append(cmds, m.loadWatchlist())
		}
		if msg.reloadHoldings {
			cmds = append(cmds, m.loadHoldings())
		}
		return m, tea.Batch(cmds...)

	case profileLoadedMsg:
		m.statusLine = "signed in as " + msg.username
		return m, nil

	case login.SubmitMsg:
		return m, m.doLogin(msg.Email, msg.Password)

	case login.RegisterMsg:
		return m, m.doRegister(msg.Username, msg.Email, msg.Password)

	case watchlist.AddSymbolMsg:
		return m, m.addSymbol(msg.Symbol)

	case watchlist.RemoveSymbolMsg:
		return m, m.removeSymbol(msg.Symbol)

	case watchlist.AlertRequestMsg:
		return m, m.createAlert(msg.Symbol, msg.Price)

	case portfolio.AddHoldingMsg:
		return m, m.addHolding(msg.Symbol, msg.Shares, msg.BuyPrice)

	case portfolio.RemoveHoldingMsg:
		return m, m.removeHolding(msg.ID)

	case notifications.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case notifications.MarkAllReadMsg:
		return m, m.markAllRead()

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that apply regardless of the active
// view. Returns handled=false when the key should fall through to the
// active view (e.g. while a text input has focus).
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Never steal keys from the login form or the add prompts.
	typing := m.currentView == ViewLogin ||
		(m.currentView == ViewWatchlist && m.watchlist.InAddMode()) ||
		(m.currentView == ViewPortfolio && m.portfolio.InAddMode())

	switch msg.String() {
	case "ctrl+c":
		m.stopServices()
		return tea.Quit, true

	case "q":
		if typing {
			return nil, false
		}
		m.stopServices()
		return tea.Quit, true

	case "1":
		if !typing {
			m.currentView = ViewWatchlist
			return nil, true
		}

	case "2":
		if !typing {
			m.currentView = ViewNotifications
			return nil, true
		}

	case "3":
		if !typing {
			m.currentView = ViewPortfolio
			return m.loadHoldings(), true
		}

	case "r":
		if !typing && m.currentView != ViewLogin {
			if !m.stream.Connected() {
				// Grant the stream a fresh reconnection budget.
				m.stream.Connect()
			}
			return tea.Batch(m.loadWatchlist(), m.syncFeed()), true
		}

	case "ctrl+l":
		if m.currentView != ViewLogin {
			m.gate.Logout()
			return nil, true
		}
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m *Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewWatchlist:
		m.watchlist, cmd = m.watchlist.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewPortfolio:
		m.portfolio, cmd = m.portfolio.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Stockwatch", m.unreadCount, m.connStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderFrame(header, m.toast, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m *Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewWatchlist:
		return m.watchlist.View()
	case ViewNotifications:
		return m.notifView.View()
	case ViewPortfolio:
		return m.portfolio.View()
	default:
		return ""
	}
}

// connStatus returns a short string describing the stream connection.
func (m *Model) connStatus() string {
	if m.currentView == ViewLogin {
		return "signed out"
	}
	if m.connected {
		return "● live"
	}
	return "○ offline"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m *Model) keyHints() string {
	if m.statusLine != "" {
		return m.statusLine
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+r register | ctrl+c quit"
	case ViewNotifications:
		return "enter mark read | A mark all | 1 watchlist | 3 portfolio | q quit"
	case ViewPortfolio:
		return "a add | d remove | 1 watchlist | 2 notifications | r refresh | q quit"
	default:
		return "a add | d remove | t alert | r refresh | 2 notifications | 3 portfolio | q quit"
	}
}

// loginErrorText maps an authentication failure to a short message
// suitable for the login form.
func loginErrorText(err error) string {
	if api.IsAuthError(err) {
		return "invalid email or password"
	}
	return fmt.Sprintf("login failed: %v", err)
}
