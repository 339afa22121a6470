// ABOUTME: Badge model for earned achievements.
package models

import "time"

// Badge is an achievement, computed from activity or unlocked by hand.
type Badge struct {
	ID          ID             `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	AchievedAt  time.Time      `json:"achievedAt"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// RecordID returns the badge id.
func (b Badge) RecordID() ID { return b.ID }

// WithDefaults fills in a missing id and achievement time.
func (b Badge) WithDefaults(newID func() ID, now time.Time) Badge {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.AchievedAt.IsZero() {
		b.AchievedAt = now
	}
	return b
}
