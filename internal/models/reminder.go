// ABOUTME: Reminder model with repeat policy and status flags.
// ABOUTME: Time is kept as the stored ISO string; parsing happens at the scheduler.
package models

import "time"

// Repeat controls how often a reminder recurs.
type Repeat string

const (
	RepeatOnce   Repeat = "once"
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
)

// IsValidRepeat reports whether s names a known repeat policy.
// The empty string means once.
func IsValidRepeat(s string) bool {
	switch Repeat(s) {
	case "", RepeatOnce, RepeatDaily, RepeatWeekly:
		return true
	}
	return false
}

// Reminder is a scheduled prompt, usually tied to a medicine.
type Reminder struct {
	ID         ID        `json:"id"`
	Title      string    `json:"title"`
	MedicineID ID        `json:"medicineId,omitempty"`
	Time       string    `json:"time"`
	Repeat     Repeat    `json:"repeat,omitempty"`
	Taken      bool      `json:"taken"`
	Skipped    bool      `json:"skipped"`
	Disabled   bool      `json:"disabled,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewReminder creates a one-shot reminder at the given time.
func NewReminder(title string, at time.Time) Reminder {
	return Reminder{
		ID:        NewID(),
		Title:     title,
		Time:      at.Format(time.RFC3339),
		Repeat:    RepeatOnce,
		CreatedAt: time.Now(),
	}
}

// RecordID returns the reminder id.
func (r Reminder) RecordID() ID { return r.ID }

// WithDefaults fills in a missing id, creation time, and repeat policy.
func (r Reminder) WithDefaults(newID func() ID, now time.Time) Reminder {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.Repeat == "" {
		r.Repeat = RepeatOnce
	}
	return r
}

// Pending reports whether the reminder may still notify.
func (r Reminder) Pending() bool {
	return !r.Taken && !r.Skipped && !r.Disabled
}

// Status returns a display label for the reminder state.
func (r Reminder) Status() string {
	switch {
	case r.Taken:
		return "taken"
	case r.Skipped:
		return "skipped"
	case r.Disabled:
		return "disabled"
	default:
		return "pending"
	}
}
