// ABOUTME: Tests for form validators.
package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) Errors {
	t.Helper()
	var errs Errors
	require.True(t, errors.As(err, &errs), "want validate.Errors, got %v", err)
	return errs
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsEmail("A@B.co"))
	assert.False(t, IsEmail("a@b"))
	assert.True(t, IsEmail(" sam@example.com "))
	assert.False(t, IsEmail("   "))
	assert.True(t, IsPhone(" 5551234567 "))
	assert.False(t, IsPhone("555-123-4567"))
	assert.True(t, IsValidDate("2024-06-03"))
	assert.True(t, IsValidDate("2024-06-03T08:30"))
	assert.False(t, IsValidDate("tomorrow"))
	assert.True(t, IsPositiveNumber("2.5"))
	assert.False(t, IsPositiveNumber("-1"))
	assert.False(t, IsPositiveNumber("abc"))
	assert.True(t, IsClock("23:59"))
	assert.False(t, IsClock("24:00"))
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login("sam@example.com", "secret"))
	assert.NoError(t, Login(" SAM@example.com ", "secret"))

	errs := fields(t, Login("", "123"))
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Password must be at least 6 characters", errs["password"])
}

func TestRegister(t *testing.T) {
	ok := RegisterForm{Name: "Sam", Email: "sam@example.com", Password: "secret", ConfirmPassword: "secret"}
	assert.NoError(t, Register(ok))

	bad := ok
	bad.ConfirmPassword = "other"
	bad.Phone = "123"
	errs := fields(t, Register(bad))
	assert.Contains(t, errs, "confirmPassword")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs.Error(), "confirmPassword: Passwords do not match")
}

func TestMedicine(t *testing.T) {
	assert.NoError(t, Medicine(MedicineForm{Name: "Aspirin", Dosage: "100mg"}))

	errs := fields(t, Medicine(MedicineForm{Doctor: "X", EndDate: "never"}))
	assert.Len(t, errs, 4)
}

func TestReminder(t *testing.T) {
	repeat := func(s string) bool { return s == "" || s == "daily" }
	assert.NoError(t, Reminder(ReminderForm{Title: "Pills", Time: "2024-06-03T08:30"}, repeat))

	errs := fields(t, Reminder(ReminderForm{Time: "08:30", Repeat: "hourly"}, repeat))
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "time")
	assert.Contains(t, errs, "repeat")
}

func TestAppointmentProfileTracker(t *testing.T) {
	assert.NoError(t, Appointment(AppointmentForm{DoctorName: "Lee", Date: "2024-06-03", Time: "09:15"}))
	assert.Error(t, Appointment(AppointmentForm{DoctorName: "Lee", Date: "2024-06-03", Time: "9am"}))

	assert.NoError(t, Profile("Sam", "sam@example.com", ""))
	assert.Error(t, Profile("Sam", "nope", ""))

	assert.NoError(t, Tracker("water", "250", false, nil))
	assert.NoError(t, Tracker("vitals", "", true, nil))
	errs := fields(t, Tracker("steps", "0", false, func(string) bool { return false }))
	assert.Len(t, errs, 2)
}
