// ABOUTME: Domain helpers layered over the raw collections.
// ABOUTME: Theme toggling, reminder status, tracker filters, and scheduler lookups.
package state

import (
	"github.com/harperreed/healhub/internal/models"
)

// ToggleTheme flips the theme, keeps settings in step, and returns the new theme.
func (s *Store) ToggleTheme() models.Theme {
	next := s.theme.Get().Toggle()
	s.SetTheme(next)
	return next
}

// SetTheme stores an explicit theme.
func (s *Store) SetTheme(t models.Theme) {
	s.theme.Set(t)
	settings := s.settings.Get()
	if settings.Theme != t {
		settings.Theme = t
		s.settings.Set(settings)
	}
}

// MarkReminder sets the taken and skipped flags of a reminder.
func (s *Store) MarkReminder(id models.ID, taken, skipped bool) (models.Reminder, bool) {
	return s.reminders.Modify(id, func(r models.Reminder) models.Reminder {
		r.Taken = taken
		r.Skipped = skipped
		return r
	})
}

// TrackersByType returns entries of one type in collection order.
func (s *Store) TrackersByType(t models.TrackerType) []models.TrackerEntry {
	var out []models.TrackerEntry
	for _, e := range s.trackers.All() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ListReminders returns the in-memory reminders.
func (s *Store) ListReminders() []models.Reminder {
	return s.reminders.All()
}

// LookupMedicine finds a medicine by id.
func (s *Store) LookupMedicine(id models.ID) (models.Medicine, bool) {
	if id == "" {
		return models.Medicine{}, false
	}
	return s.medicines.Get(id)
}

// NotificationsEnabled reports the user's notification preference.
func (s *Store) NotificationsEnabled() bool {
	return s.settings.Get().NotificationsEnabled
}

// Counts returns the size of every collection, keyed by storage key.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		s.medicines.Key():    s.medicines.Len(),
		s.reminders.Key():    s.reminders.Len(),
		s.trackers.Key():     s.trackers.Len(),
		s.appointments.Key(): s.appointments.Len(),
		s.badges.Key():       s.badges.Len(),
		s.users.Key():        s.users.Len(),
	}
}
