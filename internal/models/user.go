// ABOUTME: User model for the local account registry.
// ABOUTME: Public strips the password hash before a user leaves the process.
package models

import "time"

// User is a locally registered account.
type User struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RecordID returns the user id.
func (u User) RecordID() ID { return u.ID }

// WithDefaults fills in a missing id and creation time.
func (u User) WithDefaults(newID func() ID, now time.Time) User {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	return u
}

// Public returns a copy safe to display or export.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
