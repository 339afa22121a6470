// ABOUTME: Appointment model for doctor visits.
// ABOUTME: Date and time are kept as separate form strings like the stored format.
package models

import "time"

// Appointment is a scheduled visit with a doctor.
type Appointment struct {
	ID         ID        `json:"id"`
	DoctorName string    `json:"doctorName"`
	Specialty  string    `json:"specialty,omitempty"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Location   string    `json:"location,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Type       string    `json:"type,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecordID returns the appointment id.
func (a Appointment) RecordID() ID { return a.ID }

// WithDefaults fills in a missing id, creation time, and visit type.
func (a Appointment) WithDefaults(newID func() ID, now time.Time) Appointment {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.Type == "" {
		a.Type = "in-person"
	}
	return a
}

// When combines Date and Time in loc.
func (a Appointment) When(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	clock := a.Time
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
