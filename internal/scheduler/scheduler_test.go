// ABOUTME: Tests for reminder matching, de-duplication, and pruning.
// ABOUTME: Uses an in-memory source and a recording notifier.
package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healhub/internal/logging"
	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/notify"
)

type fakeSource struct {
	mu        sync.Mutex
	reminders []models.Reminder
	medicines map[models.ID]models.Medicine
	disabled  bool
}

func (f *fakeSource) ListReminders() []models.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Reminder(nil), f.reminders...)
}

func (f *fakeSource) LookupMedicine(id models.ID) (models.Medicine, bool) {
	m, ok := f.medicines[id]
	return m, ok
}

func (f *fakeSource) NotificationsEnabled() bool { return !f.disabled }

type sent struct {
	title string
	body  string
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recorder) Notify(_ context.Context, title string, opts notify.Options, _ notify.Fallback) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{title, opts.Body})
	return true
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

var base = time.Date(2024, 6, 3, 8, 30, 15, 0, time.UTC) // a Monday

func newTestScheduler(src Source, n Notifier) *Scheduler {
	return New(src, n, Options{Location: time.UTC, Logger: logging.Discard(), Clock: clockwork.NewFakeClockAt(base)})
}

func TestTickFiresOncePerBucket(t *testing.T) {
	src := &fakeSource{reminders: []models.Reminder{{ID: "r1", Title: "Pills", Time: "2024-06-03T08:30"}}}
	rec := &recorder{}
	s := newTestScheduler(src, rec)

	assert.Equal(t, 1, s.Tick(base))
	assert.Equal(t, 0, s.Tick(base.Add(20*time.Second)), "same minute")
	assert.Equal(t, 0, s.Tick(base.Add(time.Minute)), "no catch-up")
	assert.Equal(t, 1, rec.count())
}

func TestTickSkipsFinishedAndUnparseable(t *testing.T) {
	src := &fakeSource{reminders: []models.Reminder{
		{ID: "taken", Time: "2024-06-03T08:30", Taken: true},
		{ID: "skipped", Time: "2024-06-03T08:30", Skipped: true},
		{ID: "disabled", Time: "2024-06-03T08:30", Disabled: true},
		{ID: "garbage", Time: "soon"},
		{ID: "later", Time: "2024-06-03T09:00"},
	}}
	rec := &recorder{}
	assert.Equal(t, 0, newTestScheduler(src, rec).Tick(base))
}

func TestTickRespectsNotificationSetting(t *testing.T) {
	src := &fakeSource{disabled: true, reminders: []models.Reminder{{ID: "r1", Time: "2024-06-03T08:30"}}}
	rec := &recorder{}
	assert.Equal(t, 0, newTestScheduler(src, rec).Tick(base))
}

func TestMessageBody(t *testing.T) {
	src := &fakeSource{
		medicines: map[models.ID]models.Medicine{"m1": {ID: "m1", Name: "Aspirin", Dosage: "100mg"}},
		reminders: []models.Reminder{
			{ID: "a", Title: "Morning", MedicineID: "m1", Time: "2024-06-03T08:30"},
			{ID: "b", Notes: "stretch", Time: "2024-06-03T08:30"},
			{ID: "c", MedicineID: "gone", Time: "2024-06-03T08:30"},
		},
	}
	rec := &recorder{}
	require.Equal(t, 3, newTestScheduler(src, rec).Tick(base))

	assert.Equal(t, []sent{
		{"Morning", "Aspirin - 100mg"},
		{"Reminder", "stretch"},
		{"Reminder", "Time for your reminder"},
	}, rec.sent)
}

func TestRepeatingReminders(t *testing.T) {
	src := &fakeSource{reminders: []models.Reminder{
		{ID: "daily", Time: "2024-06-01T08:30", Repeat: models.RepeatDaily},
		{ID: "weekly", Time: "2024-05-27T08:30", Repeat: models.RepeatWeekly},
		{ID: "wrong-day", Time: "2024-05-29T08:30", Repeat: models.RepeatWeekly},
		{ID: "future", Time: "2024-06-10T08:30", Repeat: models.RepeatDaily},
	}}
	rec := &recorder{}
	s := newTestScheduler(src, rec)

	assert.Equal(t, 2, s.Tick(base))
	assert.Equal(t, 1, s.Tick(base.Add(24*time.Hour)), "daily fires again the next day")
}

func TestPrune(t *testing.T) {
	src := &fakeSource{reminders: []models.Reminder{{ID: "r1", Time: "2024-06-03T08:30", Repeat: models.RepeatDaily}}}
	rec := &recorder{}
	s := newTestScheduler(src, rec)

	s.Tick(base)
	assert.Equal(t, 0, s.Prune(base), "current bucket is kept")
	assert.Equal(t, 0, s.Tick(base))

	assert.Equal(t, 1, s.Prune(base.Add(time.Minute)))
	assert.Equal(t, 0, s.Notified())
}

type panicSource struct{ fakeSource }

func (p *panicSource) LookupMedicine(id models.ID) (models.Medicine, bool) {
	if id == "explode" {
		panic("bad medicine")
	}
	return models.Medicine{}, false
}

func TestTickRecoversPerReminder(t *testing.T) {
	src := &panicSource{fakeSource{reminders: []models.Reminder{
		{ID: "a", MedicineID: "explode", Time: "2024-06-03T08:30"},
		{ID: "b", Time: "2024-06-03T08:30"},
	}}}
	rec := &recorder{}
	assert.Equal(t, 1, newTestScheduler(src, rec).Tick(base))
	assert.Equal(t, 1, rec.count())
}

func TestStartRunsImmediateTick(t *testing.T) {
	src := &fakeSource{reminders: []models.Reminder{{ID: "r1", Time: "2024-06-03T08:30"}}}
	rec := &recorder{}
	s := newTestScheduler(src, rec)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, 1, rec.count())
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-06-03T08:30:00Z", time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC), true},
		{"2024-06-03T10:30:00+02:00", time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC), true},
		{"2024-06-03T08:30:45", time.Date(2024, 6, 3, 8, 30, 45, 0, time.UTC), true},
		{"2024-06-03T08:30", time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC), true},
		{"2024-06-03 08:30", time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"08:30", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTime(tt.in, time.UTC)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestMinuteBucket(t *testing.T) {
	assert.Equal(t, "2024-06-03T08:30", MinuteBucket(base, time.UTC))
}
