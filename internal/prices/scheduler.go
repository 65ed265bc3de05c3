package prices

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nhle/stockwatch/internal/model"
)

// QuoteFetcher retrieves a single quote. Implemented by api.Client.
type QuoteFetcher interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
}

// Authority gates privileged calls. Implemented by session.Gate.
type Authority interface {
	Active() bool
}

// Options tunes the refresh cadence. Zero values select the defaults
// (30s between passes, 5s before the first, 500ms between fetches).
type Options struct {
	Interval     time.Duration
	InitialDelay time.Duration
	Spacing      time.Duration
	FetchTimeout time.Duration

	// OnChange fires when a refreshed quote's price differs from the
	// previously known one. Unchanged prices produce no callback.
	OnChange func(symbol string, price float64)
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 5 * time.Second
	}
	if o.Spacing <= 0 {
		o.Spacing = 500 * time.Millisecond
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 10 * time.Second
	}
	return o
}

// Scheduler periodically re-fetches quotes for the tracked symbols.
// Each pass walks the symbols one at a time with a minimum spacing
// between fetches so a long watchlist never bursts the backend. Only
// symbols whose last quote was flagged real-time are eligible; when
// none are, the scheduler sits idle until the tracked set changes.
type Scheduler struct {
	api     QuoteFetcher
	gate    Authority
	opts    Options
	limiter *rate.Limiter
	wake    chan struct{}

	mu      sync.Mutex
	order   []string
	tracked map[string]model.Quote
	running bool
	cancel  context.CancelFunc
}

// New creates a scheduler over the given fetcher. Nothing runs until
// Start is called.
func New(api QuoteFetcher, gate Authority, opts Options) *Scheduler {
	opts = opts.withDefaults()
	return &Scheduler{
		api:     api,
		gate:    gate,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.Spacing), 1),
		wake:    make(chan struct{}, 1),
		tracked: make(map[string]model.Quote),
	}
}

// Start launches the refresh loop. The first pass runs after the
// initial delay; subsequent passes follow the configured interval.
// Start is idempotent while running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.loop(ctx)
}

// Stop cancels the refresh loop. A fetch already in flight is allowed
// to finish but its result is discarded rather than applied.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
}

// Track replaces the tracked set with the given quotes, preserving
// order. For a symbol already tracked the stored quote is kept so the
// next refresh compares against the last price this scheduler actually
// observed. The loop is nudged in case it was idling on an empty or
// all-delayed set.
func (s *Scheduler) Track(quotes []model.Quote) {
	s.mu.Lock()
	next := make(map[string]model.Quote, len(quotes))
	order := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if prev, ok := s.tracked[q.Symbol]; ok {
			next[q.Symbol] = prev
		} else {
			next[q.Symbol] = q
		}
		order = append(order, q.Symbol)
	}
	s.tracked = next
	s.order = order
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns the tracked quotes in tracking order.
func (s *Scheduler) Snapshot() []model.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	quotes := make([]model.Quote, 0, len(s.order))
	for _, sym := range s.order {
		quotes = append(quotes, s.tracked[sym])
	}
	return quotes
}

func (s *Scheduler) loop(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.opts.InitialDelay):
	}

	for {
		if len(s.liveSymbols()) == 0 {
			// Nothing refreshable; wait for the tracked set to change.
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}

		// Coalesce wakeups that predate this pass; the pass reads the
		// latest tracked set anyway.
		select {
		case <-s.wake:
		default:
		}

		s.refreshPass(ctx)

		// Wakeups are honored only while idling above; a tracked-set
		// change during this wait is picked up by the next scheduled
		// pass, keeping the cadence fixed.
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.opts.Interval):
		}
	}
}

// liveSymbols returns the symbols eligible for refresh: those whose
// last known quote was real-time. Delayed quotes are never re-fetched.
func (s *Scheduler) liveSymbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var live []string
	for _, sym := range s.order {
		if s.tracked[sym].RealTime {
			live = append(live, sym)
		}
	}
	return live
}

// refreshPass fetches each eligible symbol sequentially, pacing the
// calls through the limiter. One symbol failing does not stop the
// pass.
func (s *Scheduler) refreshPass(ctx context.Context) {
	if !s.gate.Active() {
		return
	}

	for _, sym := range s.liveSymbols() {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
		quote, err := s.api.Quote(fetchCtx, sym)
		cancel()

		// A cancellation that raced the fetch wins: the result is
		// dropped, not applied.
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("prices: refreshing %s: %v", sym, err)
			continue
		}

		s.apply(*quote)
	}
}

// apply stores the refreshed quote and invokes the change callback
// only when the price actually moved. A symbol untracked since the
// fetch began is ignored.
func (s *Scheduler) apply(quote model.Quote) {
	s.mu.Lock()
	prev, ok := s.tracked[quote.Symbol]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.tracked[quote.Symbol] = quote
	changed := quote.Price != prev.Price
	s.mu.Unlock()

	if changed && s.opts.OnChange != nil {
		s.opts.OnChange(quote.Symbol, quote.Price)
	}
}
