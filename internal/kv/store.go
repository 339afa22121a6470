// ABOUTME: JSON key-value adapter scoped to one logical store name.
// ABOUTME: Reads never fail; writes surface backend failures as ErrIO.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/harperreed/healhub/internal/models"
)

// DefaultStoreName is the logical store every component shares.
const DefaultStoreName = "healhub"

// Well-known keys.
const (
	KeyUser         = "user"
	KeyUsers        = "users"
	KeyTheme        = "theme"
	KeySettings     = "settings"
	KeyMedicines    = "medicines"
	KeyReminders    = "reminders"
	KeyTrackers     = "trackers"
	KeyAppointments = "appointments"
	KeyBadges       = "badges"
)

// Item is one stored key with its decoded-JSON value.
type Item struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Store maps logical keys to JSON values in a Backend.
type Store struct {
	backend Backend
	name    string
	prefix  string
	logger  *log.Logger
}

// NewStore scopes backend to the logical store name.
func NewStore(backend Backend, name string, logger *log.Logger) *Store {
	if name == "" {
		name = DefaultStoreName
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		backend: backend,
		name:    name,
		prefix:  name + "/",
		logger:  logger.With("store", name),
	}
}

// Name returns the logical store name.
func (s *Store) Name() string {
	return s.name
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get returns the stored JSON for key, or nil when it is missing or unreadable.
func (s *Store) Get(key string) json.RawMessage {
	data, err := s.backend.Get(s.key(key))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("read failed", "key", key, "err", err)
		return nil
	}
	if !json.Valid(data) {
		s.logger.Warn("discarding invalid JSON", "key", key)
		return nil
	}
	return json.RawMessage(data)
}

// GetInto decodes the value for key into v. It reports false when the key
// is missing or the value does not decode, leaving v in an unspecified state.
func (s *Store) GetInto(key string, v any) bool {
	raw := s.Get(key)
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding undecodable value", "key", key, "err", err)
		return false
	}
	return true
}

// Set encodes value as JSON and stores it under key.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetRaw(key, data)
}

// SetRaw stores pre-encoded JSON under key.
func (s *Store) SetRaw(key string, data []byte) error {
	if err := s.backend.Set(s.key(key), data); err != nil {
		if errors.Is(err, ErrIO) {
			return err
		}
		return ioErr("set", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if err := s.backend.Delete(s.key(key)); err != nil && !errors.Is(err, ErrNotFound) {
		if errors.Is(err, ErrIO) {
			return err
		}
		return ioErr("delete", key, err)
	}
	return nil
}

// Clear removes every key belonging to this logical store.
func (s *Store) Clear() error {
	keys, err := s.ownKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.Remove(k); err != nil {
			return err
		}
	}
	return nil
}

// ListAll returns every readable key and value of this store, sorted by key.
func (s *Store) ListAll() ([]Item, error) {
	keys, err := s.ownKeys()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		v := s.Get(k)
		if v == nil {
			continue
		}
		items = append(items, Item{Key: k, Value: v})
	}
	return items, nil
}

// SeedIfEmpty stores value under key only when nothing is stored there yet.
// It reports whether a write happened.
func (s *Store) SeedIfEmpty(key string, value any) (bool, error) {
	if _, err := s.backend.Get(s.key(key)); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	if err := s.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Trackers reads the tracker collection in canonical flat form.
func (s *Store) Trackers() []models.TrackerEntry {
	return NormalizeTrackers(s.Get(KeyTrackers))
}

func (s *Store) ownKeys() ([]string, error) {
	all, err := s.backend.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	var keys []string
	for _, k := range all {
		if strings.HasPrefix(k, s.prefix) {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
	}
	return sortedKeys(keys), nil
}
