// ABOUTME: Medicine model for the medicines collection.
// ABOUTME: Carries dosage, prescribing doctor, and an optional data-URL image.
package models

import "time"

// Medicine is a medication the user keeps track of.
type Medicine struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency,omitempty"`
	Doctor    string    `json:"doctor,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Image     string    `json:"image,omitempty"`
	StartDate string    `json:"startDate,omitempty"`
	EndDate   string    `json:"endDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Taken     bool      `json:"taken,omitempty"`
}

// NewMedicine creates a Medicine with a generated id and creation time.
func NewMedicine(name, dosage string) Medicine {
	return Medicine{
		ID:        NewID(),
		Name:      name,
		Dosage:    dosage,
		CreatedAt: time.Now(),
	}
}

// RecordID returns the medicine id.
func (m Medicine) RecordID() ID { return m.ID }

// WithDefaults fills in a missing id and creation time.
func (m Medicine) WithDefaults(newID func() ID, now time.Time) Medicine {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	return m
}

// Label renders "name - dosage", or just the name without a dosage.
func (m Medicine) Label() string {
	if m.Dosage == "" {
		return m.Name
	}
	return m.Name + " - " + m.Dosage
}
