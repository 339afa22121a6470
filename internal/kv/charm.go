// ABOUTME: Charm KV backend with automatic cloud sync.
// ABOUTME: Detects read-only mode when another process holds the database lock.
package kv

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	charmkv "github.com/charmbracelet/charm/kv"
)

const charmHost = "charm.2389.dev"

var errReadOnly = fmt.Errorf("cannot write: database is locked by another process (MCP server?)")

// CharmBackend wraps a Charm KV database.
type CharmBackend struct {
	kv       *charmkv.KV
	name     string
	autoSync bool
	mu       sync.RWMutex
}

// OpenCharm opens the named Charm KV database and pulls remote data.
func OpenCharm(name string) (*CharmBackend, error) {
	if os.Getenv("CHARM_HOST") == "" {
		if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
			return nil, err
		}
	}

	db, err := charmkv.OpenWithDefaultsFallback(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	c := &CharmBackend{kv: db, name: name, autoSync: true}

	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return c, nil
}

// IsReadOnly returns true if the database is open in read-only mode.
func (c *CharmBackend) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *CharmBackend) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// Sync synchronizes local state with Charm Cloud.
func (c *CharmBackend) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *CharmBackend) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// ID returns the Charm user ID for the current account.
func (c *CharmBackend) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Name returns the Charm database name.
func (c *CharmBackend) Name() string {
	return c.name
}

func (c *CharmBackend) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

func (c *CharmBackend) Get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, err := c.kv.Get([]byte(key))
	if err == nil {
		return val, nil
	}
	// The Charm KV reports missing keys with backend-specific errors,
	// so confirm absence against the key list.
	keys, kerr := c.kv.Keys()
	if kerr == nil && !containsKey(keys, []byte(key)) {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("get %s: %w", key, err)
}

func (c *CharmBackend) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ioErr("set", key, errReadOnly)
	}
	if err := c.kv.Set([]byte(key), value); err != nil {
		return ioErr("set", key, err)
	}
	c.syncIfEnabled()
	return nil
}

func (c *CharmBackend) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ioErr("delete", key, errReadOnly)
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		return ioErr("delete", key, err)
	}
	c.syncIfEnabled()
	return nil
}

func (c *CharmBackend) Keys() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, string(k))
	}
	return sortedKeys(keys), nil
}

// Close closes the KV database connection.
func (c *CharmBackend) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

func containsKey(keys [][]byte, key []byte) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
