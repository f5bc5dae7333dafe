// ABOUTME: Badger-backed token store using short-lived connections.
// ABOUTME: Each operation opens, uses, and closes the DB so the CLI, TUI, and MCP server can share it.

package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore does NOT hold a persistent connection; badger takes an
// exclusive directory lock, so one is only held for the duration of a call.
type BadgerStore struct {
	path string
	mu   sync.Mutex
}

// OpenBadger prepares a store at path, creating the directory if needed.
func OpenBadger(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create token store dir: %w", err)
	}
	s := &BadgerStore{path: path}

	// Fail early on a corrupt or locked directory.
	if err := s.do(func(*badger.DB) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BadgerStore) do(fn func(db *badger.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := badger.Open(badger.DefaultOptions(s.path).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open badger: %w", err)
	}
	if err := fn(db); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

func (s *BadgerStore) Get(key string) (string, error) {
	var val []byte
	err := s.do(func(db *badger.DB) error {
		return db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return err
			}
			val, err = item.ValueCopy(nil)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (s *BadgerStore) Set(key, value string) error {
	return s.do(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(key), []byte(value))
		})
	})
}

func (s *BadgerStore) Delete(key string) error {
	return s.do(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		})
	})
}

// Close is a no-op; connections are closed after each operation.
func (s *BadgerStore) Close() error {
	return nil
}
