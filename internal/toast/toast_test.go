// ABOUTME: Tests for the toast queue.
// ABOUTME: Drives expiry with a fake clock.
package toast

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healhub/internal/notify"
)

func TestQueueExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock, 0)

	short := q.Add(Toast{Title: "short"})
	sticky := q.Add(Toast{Title: "sticky", Duration: -1})
	long := q.Add(Toast{Title: "long", Duration: time.Minute})

	assert.Equal(t, "toast_1", short)
	require.Len(t, q.Active(), 3)

	clock.Advance(DefaultDuration)
	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, sticky, active[0].ID)
	assert.Equal(t, long, active[1].ID)

	clock.Advance(time.Hour)
	active = q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "sticky", active[0].Title)
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue(clockwork.NewFakeClock(), time.Second)
	id := q.Add(Toast{Title: "x", Type: Success})

	assert.True(t, q.Remove(id))
	assert.False(t, q.Remove(id))
	assert.Empty(t, q.Active())
}

func TestQueueSubscribe(t *testing.T) {
	q := NewQueue(clockwork.NewFakeClock(), time.Second)

	var seen [][]Toast
	cancel := q.Subscribe(func(active []Toast) { seen = append(seen, active) })
	id := q.Add(Toast{Title: "a"})
	q.Remove(id)
	cancel()
	q.Add(Toast{Title: "b"})

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])
}

func TestFallback(t *testing.T) {
	q := NewQueue(clockwork.NewFakeClock(), 0)
	q.Fallback()("Reminder", notify.Options{Body: "Aspirin - 100mg"})

	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Reminder", active[0].Title)
	assert.Equal(t, "Aspirin - 100mg", active[0].Description)
	assert.Equal(t, Info, active[0].Type)
	assert.Equal(t, DefaultDuration, active[0].Duration)
}
