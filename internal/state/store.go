// ABOUTME: Observable application state hydrated from the key-value store.
// ABOUTME: Mutations apply in memory first and are persisted by a background writer.
package state

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/models"
)

// Status is the hydration lifecycle of a Store.
type Status int

const (
	Uninitialized Status = iota
	Hydrating
	Ready
)

func (s Status) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Action describes a mutation.
type Action string

const (
	ActionSet     Action = "set"
	ActionAdd     Action = "add"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionRefresh Action = "refresh"
)

// Event is published to subscribers after every mutation.
type Event struct {
	Key    string
	Action Action
	ID     models.ID
}

// Options configures a Store.
type Options struct {
	Logger *log.Logger
	Clock  clockwork.Clock
	NewID  func() models.ID

	// PersistDelay coalesces bursts of writes. Zero writes as soon as
	// the background worker wakes.
	PersistDelay time.Duration
}

type snapshotFunc func() (value any, remove bool)

// Store holds every collection and singleton of the application.
type Store struct {
	kv     *kv.Store
	logger *log.Logger
	clock  clockwork.Clock
	newID  func() models.ID
	delay  time.Duration

	status   Status
	statusMu sync.RWMutex

	snapshots map[string]snapshotFunc
	order     []string

	medicines    *Collection[models.Medicine]
	reminders    *Collection[models.Reminder]
	trackers     *Collection[models.TrackerEntry]
	appointments *Collection[models.Appointment]
	badges       *Collection[models.Badge]
	users        *Collection[models.User]
	settings     *Value[models.Settings]
	theme        *Value[models.Theme]
	currentUser  *Value[*models.User]

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	// refreshMu is held shared by mutations and exclusively by Refresh,
	// so a reload never overwrites a change made during it.
	refreshMu sync.RWMutex
	dirtyMu   sync.Mutex
	dirty     map[string]struct{}
	writeMu   sync.Mutex
	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closed    sync.Once
}

// New builds an empty Store. Call Hydrate before use, or use Open.
func New(store *kv.Store, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.NewID == nil {
		opts.NewID = models.NewID
	}

	s := &Store{
		kv:        store,
		logger:    opts.Logger,
		clock:     opts.Clock,
		newID:     opts.NewID,
		delay:     opts.PersistDelay,
		snapshots: make(map[string]snapshotFunc),
		subs:      make(map[int]func(Event)),
		dirty:     make(map[string]struct{}),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	s.medicines = newCollection[models.Medicine](s, kv.KeyMedicines)
	s.reminders = newCollection[models.Reminder](s, kv.KeyReminders)
	s.trackers = newCollection[models.TrackerEntry](s, kv.KeyTrackers)
	s.appointments = newCollection[models.Appointment](s, kv.KeyAppointments)
	s.badges = newCollection[models.Badge](s, kv.KeyBadges)
	s.users = newCollection[models.User](s, kv.KeyUsers)
	s.settings = newValue(s, kv.KeySettings, models.DefaultSettings(), nil)
	s.theme = newValue(s, kv.KeyTheme, models.ThemeLight, nil)
	s.currentUser = newValue(s, kv.KeyUser, (*models.User)(nil), func(u *models.User) bool { return u == nil })

	go s.worker()
	return s
}

// Open builds a Store and hydrates it from storage.
func Open(store *kv.Store, opts Options) *Store {
	s := New(store, opts)
	s.Hydrate()
	return s
}

// Status reports the hydration lifecycle state.
func (s *Store) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Store) setStatus(st Status) {
	s.statusMu.Lock()
	s.status = st
	s.statusMu.Unlock()
}

func (s *Store) Medicines() *Collection[models.Medicine]       { return s.medicines }
func (s *Store) Reminders() *Collection[models.Reminder]       { return s.reminders }
func (s *Store) Trackers() *Collection[models.TrackerEntry]    { return s.trackers }
func (s *Store) Appointments() *Collection[models.Appointment] { return s.appointments }
func (s *Store) Badges() *Collection[models.Badge]             { return s.badges }
func (s *Store) Users() *Collection[models.User]               { return s.users }
func (s *Store) Settings() *Value[models.Settings]             { return s.settings }
func (s *Store) Theme() *Value[models.Theme]                   { return s.theme }
func (s *Store) CurrentUser() *Value[*models.User]             { return s.currentUser }

// Clock returns the clock used for timestamps.
func (s *Store) Clock() clockwork.Clock {
	return s.clock
}

// KV returns the underlying key-value adapter.
func (s *Store) KV() *kv.Store {
	return s.kv
}

// Hydrate loads every slice from storage. Unreadable data is replaced by
// the slice default and logged.
func (s *Store) Hydrate() {
	s.setStatus(Hydrating)

	s.medicines.load(decodeList[models.Medicine](s, kv.KeyMedicines))
	s.reminders.load(decodeList[models.Reminder](s, kv.KeyReminders))
	s.trackers.load(s.kv.Trackers())
	s.appointments.load(decodeList[models.Appointment](s, kv.KeyAppointments))
	s.badges.load(decodeList[models.Badge](s, kv.KeyBadges))
	s.users.load(decodeList[models.User](s, kv.KeyUsers))

	settings := models.DefaultSettings()
	if !s.kv.GetInto(kv.KeySettings, &settings) {
		settings = models.DefaultSettings()
	}
	s.settings.load(settings)

	theme := settings.Theme
	var stored models.Theme
	if s.kv.GetInto(kv.KeyTheme, &stored) && stored.Valid() {
		theme = stored
	}
	if !theme.Valid() {
		theme = models.ThemeLight
	}
	s.theme.load(theme)

	var user *models.User
	if !s.kv.GetInto(kv.KeyUser, &user) {
		user = nil
	}
	s.currentUser.load(user)

	s.setStatus(Ready)
}

func decodeList[T any](s *Store, key string) []T {
	var raw []json.RawMessage
	if !s.kv.GetInto(key, &raw) {
		return []T{}
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			s.logger.Warn("skipping unreadable record", "key", key, "index", i, "err", err)
			continue
		}
		out = append(out, item)
	}
	return out
}

// Refresh writes pending changes and re-reads every slice from storage.
func (s *Store) Refresh() error {
	s.refreshMu.Lock()
	err := s.Flush()
	s.Hydrate()
	s.refreshMu.Unlock()
	s.publish(Event{Key: "*", Action: ActionRefresh})
	return err
}

// Subscribe registers fn for every future Event. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) register(key string, snap snapshotFunc) {
	s.snapshots[key] = snap
	s.order = append(s.order, key)
}

// mutate runs apply and marks key dirty when it reports a change.
// Callers publish afterwards, outside the lock.
func (s *Store) mutate(key string, apply func() bool) bool {
	s.refreshMu.RLock()
	ok := apply()
	if ok {
		s.dirtyMu.Lock()
		s.dirty[key] = struct{}{}
		s.dirtyMu.Unlock()
	}
	s.refreshMu.RUnlock()
	if !ok {
		return false
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

func (s *Store) worker() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		}

		if s.delay > 0 {
			t := time.NewTimer(s.delay)
			select {
			case <-t.C:
			case <-s.stop:
				t.Stop()
				return
			}
		}
		_ = s.Flush()
	}
}

// Flush writes every pending change now. Failures are logged and
// returned; memory is never rolled back.
func (s *Store) Flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.dirtyMu.Lock()
	pending := s.dirty
	s.dirty = make(map[string]struct{})
	s.dirtyMu.Unlock()

	var errs []error
	for _, key := range s.order {
		if _, ok := pending[key]; !ok {
			continue
		}
		value, remove := s.snapshots[key]()
		var err error
		if remove {
			err = s.kv.Remove(key)
		} else {
			err = s.kv.Set(key, value)
		}
		if err != nil {
			s.logger.Warn("persist failed", "key", key, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pending reports how many keys wait to be written.
func (s *Store) Pending() int {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	return len(s.dirty)
}

// Close stops the background writer and flushes pending changes.
func (s *Store) Close() error {
	var err error
	s.closed.Do(func() {
		close(s.stop)
		<-s.done
		err = s.Flush()
	})
	return err
}
