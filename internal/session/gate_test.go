package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/stockwatch/internal/credential"
	"github.com/nhle/stockwatch/internal/model"
)

// --- fakes ---

// fakeCredStore is an in-memory CredentialStore.
type fakeCredStore struct {
	session *model.Session
	loadErr error
	saveErr error
	clears  int
}

func (f *fakeCredStore) Load() (*model.Session, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.session == nil {
		return nil, credential.ErrNoSession
	}
	sess := *f.session
	return &sess, nil
}

func (f *fakeCredStore) Save(sess model.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.session = &sess
	return nil
}

func (f *fakeCredStore) Clear() error {
	f.clears++
	f.session = nil
	return nil
}

// fakeAuth returns a canned session or error.
type fakeAuth struct {
	session *model.Session
	err     error
	calls   int
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (*model.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	sess := *f.session
	return &sess, nil
}

// expiredJWT builds a signed token whose exp claim is in the past.
func expiredJWT(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func validSession() *model.Session {
	return &model.Session{
		UserID:      "u1",
		Username:    "alice",
		Email:       "alice@example.com",
		AccessToken: "opaque-token",
		CreatedAt:   time.Now(),
	}
}

// --- tests ---

func TestRestoreActivatesStoredSession(t *testing.T) {
	store := &fakeCredStore{session: validSession()}
	gate := NewGate(store)

	var activations int32
	gate.OnChange(func(active bool) {
		if active {
			atomic.AddInt32(&activations, 1)
		}
	})

	gate.Restore()

	assert.True(t, gate.Active())
	require.NotNil(t, gate.Current())
	assert.Equal(t, "alice", gate.Current().Username)
	assert.Equal(t, "opaque-token", gate.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&activations))
}

func TestRestoreWithNoStoredSession(t *testing.T) {
	store := &fakeCredStore{}
	gate := NewGate(store)

	gate.Restore()

	assert.False(t, gate.Active())
	assert.Nil(t, gate.Current())
	assert.Zero(t, store.clears, "nothing to clear when no record exists")
}

func TestRestoreDiscardsCorruptedSession(t *testing.T) {
	store := &fakeCredStore{loadErr: errors.New("parsing stored session: unexpected end of JSON input")}
	gate := NewGate(store)

	gate.Restore()

	assert.False(t, gate.Active())
	assert.Equal(t, 1, store.clears, "corrupted record should be cleared")
}

func TestRestoreDiscardsExpiredToken(t *testing.T) {
	sess := validSession()
	sess.AccessToken = expiredJWT(t)
	store := &fakeCredStore{session: sess}
	gate := NewGate(store)

	gate.Restore()

	assert.False(t, gate.Active())
	assert.Equal(t, 1, store.clears, "expired record should be cleared")
}

func TestLoginActivatesAndPersists(t *testing.T) {
	store := &fakeCredStore{}
	auth := &fakeAuth{session: validSession()}
	gate := NewGate(store)
	gate.Bind(auth)

	var gotActive bool
	gate.OnChange(func(active bool) { gotActive = active })

	err := gate.Login(context.Background(), "alice@example.com", "pw")

	require.NoError(t, err)
	assert.True(t, gate.Active())
	assert.True(t, gotActive)
	require.NotNil(t, store.session, "session should be persisted")
	assert.Equal(t, "alice", store.session.Username)
}

func TestLoginFailureLeavesGateInactive(t *testing.T) {
	store := &fakeCredStore{}
	auth := &fakeAuth{err: errors.New("invalid credentials")}
	gate := NewGate(store)
	gate.Bind(auth)

	err := gate.Login(context.Background(), "alice@example.com", "wrong")

	require.Error(t, err)
	assert.False(t, gate.Active())
	assert.Nil(t, store.session)
}

func TestLoginSurvivesPersistenceFailure(t *testing.T) {
	store := &fakeCredStore{saveErr: errors.New("keyring locked")}
	auth := &fakeAuth{session: validSession()}
	gate := NewGate(store)
	gate.Bind(auth)

	err := gate.Login(context.Background(), "alice@example.com", "pw")

	require.NoError(t, err)
	assert.True(t, gate.Active(), "session is usable even when persistence fails")
}

func TestLogoutClearsSession(t *testing.T) {
	store := &fakeCredStore{session: validSession()}
	gate := NewGate(store)
	gate.Restore()
	require.True(t, gate.Active())

	gate.Logout()

	assert.False(t, gate.Active())
	assert.Nil(t, gate.Current())
	assert.Equal(t, 1, store.clears)
}

func TestHandleUnauthorizedIsIdempotent(t *testing.T) {
	store := &fakeCredStore{session: validSession()}
	gate := NewGate(store)
	gate.Restore()
	require.True(t, gate.Active())

	var deactivations int
	gate.OnChange(func(active bool) {
		if !active {
			deactivations++
		}
	})

	// Several concurrent-ish failures all route here; only the first
	// transition should be observable.
	gate.HandleUnauthorized()
	gate.HandleUnauthorized()
	gate.HandleUnauthorized()

	assert.False(t, gate.Active())
	assert.Equal(t, 1, deactivations, "repeated signals collapse to one transition")
}

func TestLogoutWhileInactiveStillClearsStoredRecord(t *testing.T) {
	// A persisted record exists but the gate never restored it, e.g. a
	// logout issued right after a forced deauthentication.
	store := &fakeCredStore{session: validSession()}
	gate := NewGate(store)
	require.False(t, gate.Active())

	var notified bool
	gate.OnChange(func(bool) { notified = true })

	gate.Logout()

	assert.Nil(t, store.session, "persisted record must not survive logout")
	assert.Equal(t, 1, store.clears)
	assert.False(t, notified, "no transition to report when already inactive")
}

func TestActiveReportsFalseForExpiredToken(t *testing.T) {
	store := &fakeCredStore{session: validSession()}
	gate := NewGate(store)
	gate.Restore()
	require.True(t, gate.Active())

	// Simulate the token expiring while the session is held.
	gate.mu.Lock()
	gate.current.AccessToken = expiredJWT(t)
	gate.mu.Unlock()

	assert.False(t, gate.Active())
}
