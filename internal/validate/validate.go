// ABOUTME: Form validators shared by the CLI, HTTP API, and MCP tools.
// ABOUTME: Each validator returns nil or a field-to-message map.
package validate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors maps field names to messages.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// IsRequired reports whether s has non-whitespace content.
func IsRequired(s string) bool { return strings.TrimSpace(s) != "" }

// IsEmail performs a loose email shape check.
func IsEmail(s string) bool { return emailRe.MatchString(strings.ToLower(strings.TrimSpace(s))) }

// IsStrongPassword requires at least six characters.
func IsStrongPassword(s string) bool { return len(s) >= 6 }

// IsPhone requires exactly ten digits.
func IsPhone(s string) bool { return phoneRe.MatchString(strings.TrimSpace(s)) }

// IsClock accepts HH:MM in 24-hour form.
func IsClock(s string) bool { return clockRe.MatchString(strings.TrimSpace(s)) }

// IsValidDate accepts ISO dates with or without a time part.
func IsValidDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// IsPositiveNumber accepts numeric strings greater than zero.
func IsPositiveNumber(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && f > 0
}

// Login checks the sign-in form.
func Login(email, password string) error {
	errs := Errors{}
	checkEmail(errs, "email", email)
	checkPassword(errs, password)
	return errs.orNil()
}

// RegisterForm holds the sign-up fields.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

// Register checks the sign-up form.
func Register(f RegisterForm) error {
	errs := Errors{}
	if !IsRequired(f.Name) {
		errs["name"] = "Full name is required"
	}
	checkEmail(errs, "email", f.Email)
	checkPassword(errs, f.Password)
	if f.ConfirmPassword != f.Password {
		errs["confirmPassword"] = "Passwords do not match"
	}
	if f.Phone != "" && !IsPhone(f.Phone) {
		errs["phone"] = "Invalid phone number"
	}
	return errs.orNil()
}

// MedicineForm holds the medicine fields.
type MedicineForm struct {
	Name      string
	Dosage    string
	Frequency string
	StartDate string
	EndDate   string
	Doctor    string
}

// Medicine checks a medicine. Frequency and start date are optional here
// because the CLI and API accept quick entries.
func Medicine(f MedicineForm) error {
	errs := Errors{}
	if !IsRequired(f.Name) {
		errs["name"] = "Medicine name is required"
	}
	if !IsRequired(f.Dosage) {
		errs["dosage"] = "Dosage is required"
	}
	if f.StartDate != "" && !IsValidDate(f.StartDate) {
		errs["startDate"] = "Valid start date is required"
	}
	if f.EndDate != "" && !IsValidDate(f.EndDate) {
		errs["endDate"] = "Invalid end date"
	}
	if f.Doctor != "" && len(strings.TrimSpace(f.Doctor)) < 2 {
		errs["doctor"] = "Doctor name too short"
	}
	return errs.orNil()
}

// ReminderForm holds the reminder fields.
type ReminderForm struct {
	Title  string
	Time   string
	Repeat string
}

// Reminder checks a reminder.
func Reminder(f ReminderForm, validRepeat func(string) bool) error {
	errs := Errors{}
	if !IsRequired(f.Title) {
		errs["title"] = "Title is required"
	}
	if !IsRequired(f.Time) {
		errs["time"] = "Reminder time is required"
	} else if !IsValidDate(f.Time) {
		errs["time"] = "Reminder time must be an ISO date and time"
	}
	if validRepeat != nil && !validRepeat(f.Repeat) {
		errs["repeat"] = "Repeat must be once, daily or weekly"
	}
	return errs.orNil()
}

// AppointmentForm holds the appointment fields.
type AppointmentForm struct {
	DoctorName string
	Date       string
	Time       string
}

// Appointment checks an appointment.
func Appointment(f AppointmentForm) error {
	errs := Errors{}
	if !IsRequired(f.DoctorName) {
		errs["doctorName"] = "Doctor name is required"
	}
	if !IsRequired(f.Date) || !IsValidDate(f.Date) {
		errs["date"] = "Valid date is required"
	}
	if f.Time != "" && !IsClock(f.Time) {
		errs["time"] = "Time must be HH:MM"
	}
	return errs.orNil()
}

// Profile checks a profile update.
func Profile(name, email, phone string) error {
	errs := Errors{}
	if !IsRequired(name) {
		errs["name"] = "Name is required"
	}
	if !IsRequired(email) {
		errs["email"] = "Email is required"
	} else if !IsEmail(email) {
		errs["email"] = "Invalid email"
	}
	if phone != "" && !IsPhone(phone) {
		errs["phone"] = "Invalid phone number"
	}
	return errs.orNil()
}

// Tracker checks a tracker entry. Structured values skip the number check.
func Tracker(trackerType string, value string, structured bool, validType func(string) bool) error {
	errs := Errors{}
	if !IsRequired(trackerType) {
		errs["type"] = "Tracker type required"
	} else if validType != nil && !validType(trackerType) {
		errs["type"] = "Unknown tracker type"
	}
	if !structured && !IsPositiveNumber(value) {
		errs["value"] = "Enter a valid positive number"
	}
	return errs.orNil()
}

func checkEmail(errs Errors, field, email string) {
	if !IsRequired(email) {
		errs[field] = "Email is required"
	} else if !IsEmail(email) {
		errs[field] = "Invalid email format"
	}
}

func checkPassword(errs Errors, password string) {
	if !IsRequired(password) {
		errs["password"] = "Password is required"
	} else if !IsStrongPassword(password) {
		errs["password"] = "Password must be at least 6 characters"
	}
}
