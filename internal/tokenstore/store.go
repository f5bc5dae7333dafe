// ABOUTME: Durable client-side key/value storage for the session token.
// ABOUTME: Backends: badger (default) and sqlite, selected by config.

package tokenstore

import (
	"errors"
	"fmt"
)

// TokenKey is the fixed key holding the bearer token.
const TokenKey = "token"

var ErrNotFound = errors.New("key not found")

// Store is a small durable key/value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open opens the store for the named backend at path.
func Open(backend, path string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case "badger", "":
		s, err = OpenBadger(path)
	case "sqlite":
		s, err = OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown token store backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadToken returns the persisted token, or "" when none is stored.
func LoadToken(s Store) (string, error) {
	tok, err := s.Get(TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return tok, nil
}

func SaveToken(s Store, token string) error {
	if err := s.Set(TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func ClearToken(s Store) error {
	if err := s.Delete(TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Source adapts a Store to the HTTP client's token hook.
type Source struct {
	Store Store
}

func (s Source) Token() (string, error) {
	return LoadToken(s.Store)
}
