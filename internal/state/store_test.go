// ABOUTME: Tests for the state store.
// ABOUTME: Covers collection semantics, hydration, events, and write-behind persistence.
package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/logging"
	"github.com/harperreed/healhub/internal/models"
)

func newKV(t *testing.T) (*kv.Store, kv.Backend) {
	t.Helper()
	b, err := kv.OpenMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return kv.NewStore(b, "test", logging.Discard()), b
}

func openStore(t *testing.T, kvs *kv.Store) *Store {
	t.Helper()
	s := Open(kvs, Options{
		Logger: logging.Discard(),
		Clock:  clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAssignsIDAndKeepsCallerID(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	a := s.Medicines().Add(models.Medicine{Name: "X"})
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	b := s.Medicines().Add(models.Medicine{ID: "fixed", Name: "X"})
	assert.Equal(t, models.ID("fixed"), b.ID)

	all := s.Medicines().All()
	require.Len(t, all, 2)
	assert.Equal(t, models.ID("fixed"), all[0].ID, "newest first")
}

func TestUpdateMissingIsNoop(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	s.Medicines().Add(models.Medicine{ID: "1", Name: "A"})
	before := s.Medicines().All()

	assert.False(t, s.Medicines().Update(models.Medicine{ID: "nope", Name: "B"}))
	assert.Equal(t, before, s.Medicines().All())

	assert.True(t, s.Medicines().Update(models.Medicine{ID: "1", Name: "C"}))
	got, ok := s.Medicines().Get("1")
	require.True(t, ok)
	assert.Equal(t, "C", got.Name)
}

func TestDeleteIsIdempotent(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	s.Reminders().Add(models.Reminder{ID: "1", Title: "a"})
	s.Reminders().Add(models.Reminder{ID: "2", Title: "b"})

	assert.True(t, s.Reminders().Delete("1"))
	once := s.Reminders().All()
	assert.False(t, s.Reminders().Delete("1"))
	assert.Equal(t, once, s.Reminders().All())
	assert.Equal(t, 1, s.Reminders().Len())
}

func TestIDsCompareAsStrings(t *testing.T) {
	kvs, b := newKV(t)
	require.NoError(t, b.Set("test/reminders", []byte(`[{"id":1700000000000,"title":"legacy","time":"2024-06-01T09:00"}]`)))

	s := openStore(t, kvs)
	_, ok := s.MarkReminder(models.ID("1700000000000"), true, false)
	assert.True(t, ok)
}

func TestFind(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	s.Appointments().Add(models.Appointment{ID: "abc123", DoctorName: "Lee"})
	s.Appointments().Add(models.Appointment{ID: "abd456", DoctorName: "Kim"})

	a, err := s.Appointments().Find("abc")
	require.NoError(t, err)
	assert.Equal(t, "Lee", a.DoctorName)

	_, err = s.Appointments().Find("ab")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = s.Appointments().Find("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistAndRehydrate(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	s.Medicines().Add(models.Medicine{ID: "m1", Name: "Aspirin", Dosage: "100mg"})
	s.Trackers().Add(models.NewTrackerEntry(models.TrackerWater, 250))
	s.ToggleTheme()
	s.CurrentUser().Set(&models.User{ID: "u1", Name: "Sam"})
	require.NoError(t, s.Flush())

	other := openStore(t, kvs)
	assert.Equal(t, Ready, other.Status())
	assert.Equal(t, 1, other.Medicines().Len())
	assert.Equal(t, 1, other.Trackers().Len())
	assert.Equal(t, models.ThemeDark, other.Theme().Get())
	assert.Equal(t, models.ThemeDark, other.Settings().Get().Theme)
	require.NotNil(t, other.CurrentUser().Get())
	assert.Equal(t, "Sam", other.CurrentUser().Get().Name)

	s.CurrentUser().Set(nil)
	require.NoError(t, s.Flush())
	assert.Nil(t, kvs.Get(kv.KeyUser))
}

func TestHydrateToleratesCorruptData(t *testing.T) {
	kvs, b := newKV(t)
	require.NoError(t, b.Set("test/medicines", []byte(`{broken`)))
	require.NoError(t, b.Set("test/reminders", []byte(`[{"id":"ok","title":"a"},{"id":["bad"]}]`)))
	require.NoError(t, b.Set("test/settings", []byte(`"nope"`)))
	require.NoError(t, b.Set("test/theme", []byte(`"purple"`)))

	s := openStore(t, kvs)
	assert.Equal(t, 0, s.Medicines().Len())
	assert.Equal(t, 1, s.Reminders().Len())
	assert.Equal(t, models.DefaultSettings(), s.Settings().Get())
	assert.Equal(t, models.ThemeLight, s.Theme().Get())
}

func TestHydrateNormalizesGroupedTrackers(t *testing.T) {
	kvs, b := newKV(t)
	require.NoError(t, b.Set("test/trackers", []byte(`{"water":[{"id":"w1","type":"water","value":250}],"sleep":[{"id":"s1","type":"sleep","value":8}]}`)))

	s := openStore(t, kvs)
	assert.Equal(t, 2, s.Trackers().Len())
	assert.Len(t, s.TrackersByType(models.TrackerWater), 1)

	s.Trackers().Add(models.TrackerEntry{Type: models.TrackerMood, Value: models.NumberValue(4)})
	require.NoError(t, s.Flush())
	assert.Equal(t, byte('['), kvs.Get(kv.KeyTrackers)[0], "writers store the flat list")
}

func TestSubscribe(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	var mu sync.Mutex
	var events []Event
	cancel := s.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	s.Medicines().Add(models.Medicine{ID: "m1"})
	s.Medicines().Delete("m1")
	cancel()
	s.Medicines().Add(models.Medicine{ID: "m2"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Key: kv.KeyMedicines, Action: ActionAdd, ID: "m1"}, events[0])
	assert.Equal(t, ActionDelete, events[1].Action)
}

func TestWriteBehindCoalesces(t *testing.T) {
	kvs, _ := newKV(t)
	s := Open(kvs, Options{Logger: logging.Discard(), PersistDelay: 20 * time.Millisecond})
	defer func() { _ = s.Close() }()

	for i := 0; i < 10; i++ {
		s.Medicines().Add(models.Medicine{Name: "m"})
	}

	assert.Eventually(t, func() bool {
		var got []models.Medicine
		return kvs.GetInto(kv.KeyMedicines, &got) && len(got) == 10
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.Pending())
}

type brokenBackend struct{ kv.Backend }

func (brokenBackend) Set(string, []byte) error { return errors.New("read-only filesystem") }

func TestWriteFailureKeepsMemory(t *testing.T) {
	_, b := newKV(t)
	kvs := kv.NewStore(brokenBackend{b}, "test", logging.Discard())
	s := Open(kvs, Options{Logger: logging.Discard(), PersistDelay: time.Hour})
	defer func() { _ = s.Close() }()

	s.Medicines().Add(models.Medicine{ID: "m1"})
	err := s.Flush()
	assert.ErrorIs(t, err, kv.ErrIO)
	assert.Equal(t, 1, s.Medicines().Len())
}

func TestRefreshPicksUpExternalWrites(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	require.NoError(t, kvs.Set(kv.KeyBadges, []models.Badge{{ID: "b1", Name: "First"}}))
	assert.Equal(t, 0, s.Badges().Len())

	require.NoError(t, s.Refresh())
	assert.Equal(t, 1, s.Badges().Len())
}

func TestRefreshKeepsConcurrentMutations(t *testing.T) {
	kvs, _ := newKV(t)
	s := Open(kvs, Options{Logger: logging.Discard(), PersistDelay: time.Hour})
	defer func() { _ = s.Close() }()

	const n = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			s.Medicines().Add(models.Medicine{Name: "m"})
		}
	}()

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
			require.NoError(t, s.Refresh())
		}
	}

	assert.Equal(t, n, s.Medicines().Len())
	require.NoError(t, s.Refresh())
	var stored []models.Medicine
	require.True(t, kvs.GetInto(kv.KeyMedicines, &stored))
	assert.Len(t, stored, n)
}

func TestModifyMayReadCollection(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	s.Medicines().Add(models.Medicine{ID: "m1", Name: "Aspirin"})
	s.Medicines().Add(models.Medicine{ID: "m2", Name: "Ibuprofen"})

	got, ok := s.Medicines().Modify("m1", func(m models.Medicine) models.Medicine {
		other, _ := s.Medicines().Get("m2")
		m.Notes = "with " + other.Name
		return m
	})
	require.True(t, ok)
	assert.Equal(t, "with Ibuprofen", got.Notes)

	_, ok = s.Medicines().Modify("gone", func(m models.Medicine) models.Medicine { return m })
	assert.False(t, ok)
}

func TestDeleteMissingSchedulesNoWrite(t *testing.T) {
	kvs, _ := newKV(t)
	s := Open(kvs, Options{Logger: logging.Discard(), PersistDelay: time.Hour})
	defer func() { _ = s.Close() }()

	assert.False(t, s.Medicines().Delete("nope"))
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerSource(t *testing.T) {
	kvs, _ := newKV(t)
	s := openStore(t, kvs)

	s.Medicines().Add(models.Medicine{ID: "m1", Name: "Aspirin"})
	_, ok := s.LookupMedicine("m1")
	assert.True(t, ok)
	_, ok = s.LookupMedicine("")
	assert.False(t, ok)

	assert.True(t, s.NotificationsEnabled())
	settings := s.Settings().Get()
	settings.NotificationsEnabled = false
	s.Settings().Set(settings)
	assert.False(t, s.NotificationsEnabled())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "hydrating", Hydrating.String())
	assert.Equal(t, "ready", Ready.String())
}
