package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/stockwatch/internal/credential"
	"github.com/nhle/stockwatch/internal/model"
)

// CredentialStore persists the session record across restarts.
// Implemented by credential.Store.
type CredentialStore interface {
	Load() (*model.Session, error)
	Save(model.Session) error
	Clear() error
}

// Authenticator exchanges credentials for a session.
// Implemented by api.Client.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Session, error)
}

// Gate is the single source of truth for the current authenticated
// session. Components performing privileged calls consult Active()
// first, and any collaborator that observes a 401-class response
// routes it to HandleUnauthorized.
type Gate struct {
	mu        sync.Mutex
	store     CredentialStore
	auth      Authenticator
	current   *model.Session
	listeners []func(active bool)
}

// NewGate creates a Gate backed by the given credential store. The
// authenticator is bound separately because the API client that
// implements it needs the gate's token callback at construction time.
func NewGate(store CredentialStore) *Gate {
	return &Gate{store: store}
}

// Bind attaches the authenticator used by Login.
func (g *Gate) Bind(auth Authenticator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.auth = auth
}

// OnChange registers a listener invoked after every activation or
// deactivation. Listeners run in registration order.
func (g *Gate) OnChange(listener func(active bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, listener)
}

// Restore attempts to load a previously persisted session. A corrupted
// or expired record is discarded and the gate stays inactive; Restore
// never returns an error for those cases.
func (g *Gate) Restore() {
	sess, err := g.store.Load()
	if err != nil {
		if !errors.Is(err, credential.ErrNoSession) {
			// Corrupted record: discard it so the next start is clean.
			log.Printf("session: discarding unreadable stored session: %v", err)
			if clearErr := g.store.Clear(); clearErr != nil {
				log.Printf("session: clearing stored session: %v", clearErr)
			}
		}
		return
	}

	if tokenExpired(sess.AccessToken) {
		log.Printf("session: stored token for %s has expired", sess.Username)
		if err := g.store.Clear(); err != nil {
			log.Printf("session: clearing expired session: %v", err)
		}
		return
	}

	g.mu.Lock()
	g.current = sess
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	for _, l := range listeners {
		l(true)
	}
}

// Login authenticates against the backend and, on success, activates
// and persists the session. On failure the gate stays inactive and the
// error is returned to the caller.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	g.mu.Lock()
	auth := g.auth
	g.mu.Unlock()
	if auth == nil {
		return fmt.Errorf("session: no authenticator bound")
	}

	sess, err := auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := g.store.Save(*sess); err != nil {
		// The session is still usable for this run; persistence is
		// best-effort.
		log.Printf("session: persisting session: %v", err)
	}

	g.mu.Lock()
	g.current = sess
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	for _, l := range listeners {
		l(true)
	}
	return nil
}

// Logout clears both the in-memory and persisted session. It always
// succeeds.
func (g *Gate) Logout() {
	g.clear()
}

// HandleUnauthorized is the intake point for forced-logout signals
// raised by any collaborator that observes an authorization failure.
// It has the same effect as Logout and is idempotent: repeated signals
// collapse to a single observable clear transition.
func (g *Gate) HandleUnauthorized() {
	g.clear()
}

// clear deactivates the session. The persisted record is removed even
// when the gate is already inactive, so a logout can never leave a
// stale credential behind. Listeners fire only on the active ->
// inactive transition.
func (g *Gate) clear() {
	g.mu.Lock()
	wasActive := g.current != nil
	g.current = nil
	listeners := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()

	if err := g.store.Clear(); err != nil {
		log.Printf("session: clearing stored session: %v", err)
	}

	if !wasActive {
		return
	}

	for _, l := range listeners {
		l(false)
	}
}

// Active reports whether a session is present and its token has not
// expired. Dependent components must check this before privileged
// calls.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil && !tokenExpired(g.current.AccessToken)
}

// Current returns a copy of the active session, or nil.
func (g *Gate) Current() *model.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	sess := *g.current
	return &sess
}

// Token returns the current bearer token, or "" when inactive. Shaped
// to plug into api.NewClient.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return ""
	}
	return g.current.AccessToken
}

// tokenExpired decodes the token's exp claim without verifying the
// signature (verification is the server's job) so an expired token is
// treated as inactive without a round trip. Tokens that are not JWTs
// or carry no exp claim are assumed valid until the server says
// otherwise.
func tokenExpired(token string) bool {
	if token == "" {
		return true
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
