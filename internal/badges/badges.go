// ABOUTME: Achievement rules computed from tracker and reminder history.
// ABOUTME: Merge adds newly earned badges without duplicating ids.
package badges

import (
	"fmt"
	"time"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/report"
	"github.com/harperreed/healhub/internal/state"
)

const (
	HydrationHeroID = "hydration_hero"
	MedMasterID     = "med_master"

	hydrationDailyML = 2000
	hydrationDays    = 7
	medMasterTaken   = 50
)

// Options tunes the rules.
type Options struct {
	StreakDays int
	Location   *time.Location
}

// Compute returns every badge the history currently earns.
func Compute(trackers []models.TrackerEntry, reminders []models.Reminder, opts Options, now time.Time) []models.Badge {
	if opts.StreakDays <= 0 {
		opts.StreakDays = 7
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	var out []models.Badge

	days := 0
	for _, p := range report.GroupByDate(trackers, models.TrackerWater, loc) {
		if p.Value >= hydrationDailyML {
			days++
		}
	}
	if days >= hydrationDays {
		out = append(out, models.Badge{
			ID:          HydrationHeroID,
			Name:        "Hydration Hero",
			Description: fmt.Sprintf("Drank at least %d ml on %d days", hydrationDailyML, hydrationDays),
			AchievedAt:  now,
			Meta:        map[string]any{"days": days},
		})
	}

	logged := make(map[string]bool)
	for _, e := range trackers {
		logged[report.DayKey(e.Date, loc)] = true
	}
	streak := 0
	local := now.In(loc)
	for i := 0; i < opts.StreakDays; i++ {
		if !logged[local.AddDate(0, 0, -i).Format("2006-01-02")] {
			break
		}
		streak++
	}
	if streak >= opts.StreakDays {
		out = append(out, models.Badge{
			ID:          models.ID(fmt.Sprintf("streak_%d", opts.StreakDays)),
			Name:        fmt.Sprintf("Consistency: %d-day streak", opts.StreakDays),
			Description: "Logged something every day",
			AchievedAt:  now,
			Meta:        map[string]any{"streak": streak},
		})
	}

	taken := 0
	for _, r := range reminders {
		if r.Taken {
			taken++
		}
	}
	if taken >= medMasterTaken {
		out = append(out, models.Badge{
			ID:          MedMasterID,
			Name:        "Medication Master",
			Description: fmt.Sprintf("Took %d scheduled doses", medMasterTaken),
			AchievedAt:  now,
			Meta:        map[string]any{"takenCount": taken},
		})
	}

	return out
}

// Merge returns the earned badges not already present in existing.
func Merge(existing, earned []models.Badge) []models.Badge {
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.ID.String()] = true
	}
	var fresh []models.Badge
	for _, b := range earned {
		if !have[b.ID.String()] {
			have[b.ID.String()] = true
			fresh = append(fresh, b)
		}
	}
	return fresh
}

// Award computes badges from the store's history and adds the new ones.
// It returns only the badges added by this call.
func Award(st *state.Store, opts Options) []models.Badge {
	now := st.Clock().Now()
	earned := Compute(st.Trackers().All(), st.Reminders().All(), opts, now)
	fresh := Merge(st.Badges().All(), earned)
	for i, b := range fresh {
		fresh[i] = st.Badges().Add(b)
	}
	return fresh
}
