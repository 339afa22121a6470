// ABOUTME: Badger-backed local key-value backend.
// ABOUTME: Supports an in-memory mode for tests and ephemeral sessions.
package kv

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/healhub/internal/logging"
)

// BadgerBackend stores keys in a Badger database.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens or creates a Badger database in dir.
func OpenBadger(dir string, logger *log.Logger) (*BadgerBackend, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return openBadger(badger.DefaultOptions(dir), logger)
}

// OpenMemory opens a Badger database that lives only in memory.
func OpenMemory(logger *log.Logger) (*BadgerBackend, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true), logger)
}

func openBadger(opts badger.Options, logger *log.Logger) (*BadgerBackend, error) {
	if logger != nil {
		opts = opts.WithLogger(logging.BadgerLogger{L: logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out, nil
}

func (b *BadgerBackend) Set(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return ioErr("set", key, err)
	}
	return nil
}

func (b *BadgerBackend) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return ioErr("delete", key, err)
	}
	return nil
}

func (b *BadgerBackend) Keys() ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return sortedKeys(keys), nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
