package credential

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/stockwatch/internal/model"
)

const (
	serviceName = "stockwatch"
	sessionKey  = "session"
)

// ErrNoSession is returned by Load when no session record exists.
var ErrNoSession = errors.New("no stored session")

// Store persists the current session record in the system keyring so
// it survives restarts. It is not assumed atomic or transactional.
type Store struct {
	open func() (keyring.Keyring, error)
}

// NewStore returns a Store backed by the system keyring.
func NewStore() *Store {
	return &Store{open: openKeyring}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/stockwatch/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("stockwatch-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Load retrieves the persisted session. It returns ErrNoSession when
// no record exists; a record that fails to parse is reported as an
// error so the caller can discard it.
func (s *Store) Load() (*model.Session, error) {
	ring, err := s.open()
	if err != nil {
		return nil, err
	}

	item, err := ring.Get(sessionKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("getting stored session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(item.Data, &sess); err != nil {
		return nil, fmt.Errorf("parsing stored session: %w", err)
	}

	return &sess, nil
}

// Save persists the session record, replacing any previous one.
func (s *Store) Save(sess model.Session) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := ring.Set(keyring.Item{Key: sessionKey, Data: data}); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	return nil
}

// Clear removes the persisted session record. A missing record is not
// an error.
func (s *Store) Clear() error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	if err := ring.Remove(sessionKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("clearing session: %w", err)
	}

	return nil
}
