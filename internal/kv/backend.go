// ABOUTME: Backend contract for raw byte key-value storage.
// ABOUTME: Charm, Badger, and SQLite implementations satisfy it.
package kv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Backend.Get when a key is absent.
var ErrNotFound = errors.New("key not found")

// ErrIO marks a failed write to the underlying storage.
var ErrIO = errors.New("storage i/o failure")

// Backend is a flat byte key-value store.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindCharm  Kind = "charm"
	KindBadger Kind = "badger"
	KindSQLite Kind = "sqlite"
)

// ParseKind validates a backend name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindCharm:
		return KindCharm, nil
	case KindBadger, "":
		return KindBadger, nil
	case KindSQLite:
		return KindSQLite, nil
	}
	return "", fmt.Errorf("unknown backend %q (want charm, badger or sqlite)", s)
}

func ioErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrIO, op, key, err)
}

func sortedKeys(keys []string) []string {
	sort.Strings(keys)
	return keys
}

// DataDir returns the default data directory under XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "healhub")
}
