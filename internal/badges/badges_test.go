// ABOUTME: Tests for badge rules.
package badges

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/logging"
	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
)

var now = time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)

func water(ml float64, daysAgo int) models.TrackerEntry {
	return models.TrackerEntry{Type: models.TrackerWater, Value: models.NumberValue(ml), Date: now.AddDate(0, 0, -daysAgo)}
}

func ids(bs []models.Badge) []string {
	var out []string
	for _, b := range bs {
		out = append(out, b.ID.String())
	}
	return out
}

func TestHydrationHeroAndStreak(t *testing.T) {
	var trackers []models.TrackerEntry
	for d := 0; d < 7; d++ {
		trackers = append(trackers, water(1500, d), water(600, d))
	}

	got := Compute(trackers, nil, Options{Location: time.UTC}, now)
	assert.Equal(t, []string{HydrationHeroID, "streak_7"}, ids(got))
	assert.Equal(t, 7, got[0].Meta["days"])
}

func TestStreakBreaks(t *testing.T) {
	trackers := []models.TrackerEntry{water(100, 0), water(100, 1), water(100, 3)}

	assert.Empty(t, Compute(trackers, nil, Options{StreakDays: 3, Location: time.UTC}, now))
	assert.Equal(t, []string{"streak_2"}, ids(Compute(trackers, nil, Options{StreakDays: 2, Location: time.UTC}, now)))
}

func TestMedMaster(t *testing.T) {
	reminders := make([]models.Reminder, 50)
	for i := range reminders {
		reminders[i].Taken = true
	}
	got := Compute(nil, reminders, Options{Location: time.UTC}, now)
	require.Len(t, got, 1)
	assert.Equal(t, models.ID(MedMasterID), got[0].ID)

	reminders[0].Taken = false
	assert.Empty(t, Compute(nil, reminders, Options{Location: time.UTC}, now))
}

func TestMerge(t *testing.T) {
	existing := []models.Badge{{ID: HydrationHeroID}}
	earned := []models.Badge{{ID: HydrationHeroID}, {ID: MedMasterID}, {ID: MedMasterID}}

	assert.Equal(t, []string{MedMasterID}, ids(Merge(existing, earned)))
}

func TestAwardAddsOnlyNewBadges(t *testing.T) {
	b, err := kv.OpenMemory(nil)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	st := state.Open(kv.NewStore(b, "badges", logging.Discard()), state.Options{
		Logger: logging.Discard(),
		Clock:  clockwork.NewFakeClockAt(now),
	})
	defer func() { _ = st.Close() }()

	for i := 0; i < 7; i++ {
		st.Trackers().Add(water(2500, i))
	}

	first := Award(st, Options{Location: time.UTC})
	assert.ElementsMatch(t, []string{HydrationHeroID, "streak_7"}, ids(first))
	assert.Equal(t, 2, st.Badges().Len())

	second := Award(st, Options{Location: time.UTC})
	assert.Empty(t, second)
	assert.Equal(t, 2, st.Badges().Len())
}
