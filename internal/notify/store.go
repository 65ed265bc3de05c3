package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/stockwatch/internal/model"
)

// Fetcher is the server collaborator the store reconciles against.
// Implemented by api.Client.
type Fetcher interface {
	Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) error
}

// Authority gates privileged calls. Implemented by session.Gate.
type Authority interface {
	Active() bool
}

// Options configures the store's callbacks and cadence.
type Options struct {
	// OnChange fires after any visible state change (list or count).
	OnChange func()

	// OnToast fires when a high-priority notification is delivered
	// over the event stream. The toast is transient and not stored
	// as separate state.
	OnToast func(model.Notification)

	// CountInterval is the cadence of the background unread-count
	// poll. Defaults to 30s.
	CountInterval time.Duration

	// FetchTimeout bounds each server call. Defaults to 10s.
	FetchTimeout time.Duration
}

// Store holds the authoritative in-process view of notifications and
// the unread count. Three inputs feed it: batch fetches (which replace
// the whole collection; server order wins), single pushed events
// (prepended as-is), and local mark-as-read actions. A completed fetch
// overwrites whatever pushed events arrived before it; the periodic
// count poll keeps the badge honest even when the stream is down.
type Store struct {
	api  Fetcher
	gate Authority
	opts Options

	mu            sync.Mutex
	notifications []model.Notification
	unread        int
	started       bool
	stopCh        chan struct{}
}

// New creates a notification store. Callbacks in opts may be nil.
func New(api Fetcher, gate Authority, opts Options) *Store {
	if opts.CountInterval <= 0 {
		opts.CountInterval = 30 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	return &Store{api: api, gate: gate, opts: opts}
}

// Start performs the initial fetch pair and arms the background
// unread-count poll. It is idempotent while running.
func (s *Store) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.pollLoop(stopCh)
}

// Stop halts the background poll. In-memory state is kept so the UI
// can keep rendering it; a later Start refreshes it.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	close(s.stopCh)
	s.started = false
}

// pollLoop runs the startup fetches and the fixed-interval count poll.
func (s *Store) pollLoop(stopCh chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.FetchTimeout)
	if err := s.Refresh(ctx, false); err != nil {
		log.Printf("notify: initial fetch: %v", err)
	}
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), s.opts.FetchTimeout)
	if err := s.RefreshUnreadCount(ctx); err != nil {
		log.Printf("notify: initial unread count: %v", err)
	}
	cancel()

	ticker := time.NewTicker(s.opts.CountInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.FetchTimeout)
			if err := s.RefreshUnreadCount(ctx); err != nil {
				log.Printf("notify: unread count poll: %v", err)
			}
			cancel()
		}
	}
}

// Refresh fetches the current list and replaces the in-memory
// collection wholesale; the server's order is authoritative. Pushed
// events that arrived before this fetch completed are overwritten, not
// merged; the last completed write wins. On a full fetch the unread
// counter is re-derived from the response.
func (s *Store) Refresh(ctx context.Context, unreadOnly bool) error {
	if !s.gate.Active() {
		return fmt.Errorf("notify: no active session")
	}

	notifications, err := s.api.Notifications(ctx, unreadOnly)
	if err != nil {
		return fmt.Errorf("fetching notifications: %w", err)
	}

	s.mu.Lock()
	s.notifications = notifications
	if !unreadOnly {
		unread := 0
		for _, n := range notifications {
			if !n.Read {
				unread++
			}
		}
		s.unread = unread
	}
	s.mu.Unlock()

	s.changed()
	return nil
}

// RefreshUnreadCount fetches the server's authoritative count and
// overwrites the local counter unconditionally.
func (s *Store) RefreshUnreadCount(ctx context.Context) error {
	if !s.gate.Active() {
		return fmt.Errorf("notify: no active session")
	}

	count, err := s.api.UnreadCount(ctx)
	if err != nil {
		return fmt.Errorf("fetching unread count: %w", err)
	}

	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()

	s.changed()
	return nil
}

// IngestPushed prepends a notification delivered over the event
// stream. No deduplication against existing entries is performed; the
// next full fetch reconciles any transient duplicate.
func (s *Store) IngestPushed(n model.Notification) {
	s.mu.Lock()
	s.notifications = append([]model.Notification{n}, s.notifications...)
	if !n.Read {
		s.unread++
	}
	s.mu.Unlock()

	if n.Priority == model.PriorityHigh && s.opts.OnToast != nil {
		s.opts.OnToast(n)
	}
	s.changed()
}

// IngestAlert adapts a pushed price-alert event into a synthesized
// high-priority notification and ingests it.
func (s *Store) IngestAlert(symbol, condition string, targetPrice float64) {
	s.IngestPushed(model.Notification{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("Price alert: %s", symbol),
		Message:   fmt.Sprintf("%s is %s your target of %.2f", symbol, condition, targetPrice),
		Kind:      model.KindPriceAlert,
		Priority:  model.PriorityHigh,
		Symbol:    symbol,
		CreatedAt: time.Now(),
	})
}

// MarkAsRead marks one notification read on the server and, only on
// acknowledgment, updates local state: the matching entry's flag is
// set (no-op if absent) and the counter drops by one, floored at zero.
// On failure the state is left untouched and the error returned.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	if !s.gate.Active() {
		return fmt.Errorf("notify: no active session")
	}

	if err := s.api.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}

	s.mu.Lock()
	changed := false
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed = true
		}
	}
	if changed && s.unread > 0 {
		s.unread--
	}
	s.mu.Unlock()

	if changed {
		s.changed()
	}
	return nil
}

// MarkAllAsRead marks every currently-unread entry read, one at a
// time. A failure on one entry is logged and does not abort the rest.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	var ids []string
	for _, n := range s.notifications {
		if !n.Read {
			ids = append(ids, n.ID)
		}
	}
	s.mu.Unlock()

	failed := 0
	for _, id := range ids {
		if err := s.MarkAsRead(ctx, id); err != nil {
			log.Printf("notify: mark all: %v", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("marking all read: %d of %d failed", failed, len(ids))
	}
	return nil
}

// Notifications returns a copy of the current collection, newest first.
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification{}, s.notifications...)
}

// UnreadCount returns the current unread counter.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Replace seeds the collection without touching the server, used to
// render the local snapshot cache before the first fetch completes.
func (s *Store) Replace(notifications []model.Notification) {
	s.mu.Lock()
	s.notifications = notifications
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	s.unread = unread
	s.mu.Unlock()

	s.changed()
}

func (s *Store) changed() {
	if s.opts.OnChange != nil {
		s.opts.OnChange()
	}
}
