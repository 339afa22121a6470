// ABOUTME: Generic in-memory collection with id-keyed mutations.
// ABOUTME: Every mutation notifies the owning store for events and persistence.
package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/healhub/internal/models"
)

var (
	// ErrNotFound is returned when no record matches an id or prefix.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when an id prefix matches several records.
	ErrAmbiguous = errors.New("ambiguous prefix")
)

// Record is implemented by every stored collection element.
type Record[T any] interface {
	RecordID() models.ID
	WithDefaults(newID func() models.ID, now time.Time) T
}

// Collection is an ordered list of records persisted under one key.
type Collection[T Record[T]] struct {
	mu       sync.RWMutex
	modifyMu sync.Mutex
	key      string
	items    []T
	owner    *Store
}

func newCollection[T Record[T]](owner *Store, key string) *Collection[T] {
	c := &Collection[T]{key: key, owner: owner}
	owner.register(key, func() (any, bool) { return c.All(), false })
	return c
}

// Key returns the storage key backing the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// SetAll replaces the whole collection.
func (c *Collection[T]) SetAll(items []T) {
	c.owner.mutate(c.key, func() bool {
		c.mu.Lock()
		c.items = append([]T(nil), items...)
		c.mu.Unlock()
		return true
	})
	c.owner.publish(Event{Key: c.key, Action: ActionSet})
}

// Add stores item at the front of the collection. A missing id and
// creation time are filled in; a caller-supplied id is kept.
func (c *Collection[T]) Add(item T) T {
	item = item.WithDefaults(c.owner.newID, c.owner.clock.Now())
	c.owner.mutate(c.key, func() bool {
		c.mu.Lock()
		c.items = append([]T{item}, c.items...)
		c.mu.Unlock()
		return true
	})
	c.owner.publish(Event{Key: c.key, Action: ActionAdd, ID: item.RecordID()})
	return item
}

// Update replaces the element whose id matches item. It reports false,
// and changes nothing, when no element matches.
func (c *Collection[T]) Update(item T) bool {
	_, ok := c.Modify(item.RecordID(), func(T) T { return item })
	return ok
}

// Modify applies fn to the element with the given id. fn runs without the
// collection lock held, so it may read the collection; Modify calls on the
// same collection are serialized and must not nest.
func (c *Collection[T]) Modify(id models.ID, fn func(T) T) (T, bool) {
	c.modifyMu.Lock()
	defer c.modifyMu.Unlock()

	var zero T
	current, ok := c.Get(id)
	if !ok {
		return zero, false
	}
	updated := fn(current)

	replaced := c.owner.mutate(c.key, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		idx := c.indexLocked(id)
		if idx < 0 {
			return false
		}
		c.items[idx] = updated
		return true
	})
	if !replaced {
		return zero, false
	}
	c.owner.publish(Event{Key: c.key, Action: ActionUpdate, ID: id})
	return updated, true
}

// Delete removes the element with the given id. Deleting an id that is
// not present is a no-op and reports false.
func (c *Collection[T]) Delete(id models.ID) bool {
	removed := c.owner.mutate(c.key, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		idx := c.indexLocked(id)
		if idx < 0 {
			return false
		}
		c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
		return true
	})
	if removed {
		c.owner.publish(Event{Key: c.key, Action: ActionDelete, ID: id})
	}
	return removed
}

// All returns a copy of the collection in display order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the element with the given id.
func (c *Collection[T]) Get(id models.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// Find resolves a full id or a unique id prefix.
func (c *Collection[T]) Find(idOrPrefix string) (T, error) {
	var zero T
	if idOrPrefix == "" {
		return zero, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if item, ok := c.Get(models.ID(idOrPrefix)); ok {
		return item, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []T
	for _, item := range c.items {
		if strings.HasPrefix(item.RecordID().String(), idOrPrefix) {
			matches = append(matches, item)
			if len(matches) > 1 {
				return zero, fmt.Errorf("%w %s: matches multiple records", ErrAmbiguous, idOrPrefix)
			}
		}
	}
	if len(matches) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return matches[0], nil
}

// Len returns the number of elements.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) indexLocked(id models.ID) int {
	for i, item := range c.items {
		if item.RecordID().String() == id.String() {
			return i
		}
	}
	return -1
}

// load replaces contents without publishing or persisting.
func (c *Collection[T]) load(items []T) {
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// Value is a persisted singleton.
type Value[T any] struct {
	mu    sync.RWMutex
	key   string
	v     T
	empty func(T) bool
	owner *Store
}

func newValue[T any](owner *Store, key string, initial T, empty func(T) bool) *Value[T] {
	v := &Value[T]{key: key, v: initial, empty: empty, owner: owner}
	owner.register(key, func() (any, bool) {
		cur := v.Get()
		if v.empty != nil && v.empty(cur) {
			return nil, true
		}
		return cur, false
	})
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set replaces the value.
func (v *Value[T]) Set(val T) {
	v.owner.mutate(v.key, func() bool {
		v.mu.Lock()
		v.v = val
		v.mu.Unlock()
		return true
	})
	v.owner.publish(Event{Key: v.key, Action: ActionSet})
}

func (v *Value[T]) load(val T) {
	v.mu.Lock()
	v.v = val
	v.mu.Unlock()
}
