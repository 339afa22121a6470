// ABOUTME: Tests for the local account registry.
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/logging"
	"github.com/harperreed/healhub/internal/state"
	"github.com/harperreed/healhub/internal/validate"
)

func newService(t *testing.T) (*Service, *state.Store) {
	t.Helper()
	b, err := kv.OpenMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	st := state.Open(kv.NewStore(b, "auth", logging.Discard()), state.Options{Logger: logging.Discard()})
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, bcrypt.MinCost), st
}

var form = validate.RegisterForm{
	Name:            "Sam",
	Email:           "Sam@Example.com",
	Password:        "secret1",
	ConfirmPassword: "secret1",
}

func TestRegisterLoginLogout(t *testing.T) {
	svc, st := newService(t)

	u, err := svc.Register(form)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	stored := st.Users().All()
	require.Len(t, stored, 1)
	assert.NotEqual(t, "secret1", stored[0].PasswordHash)

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	svc.Logout()
	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Equal(t, 1, st.Users().Len(), "logout keeps the registry")

	_, err = svc.Login("sam@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err = svc.Login(" SAM@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Sam", u.Name)
}

func TestRegisterDuplicateAndInvalid(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(form)
	require.NoError(t, err)

	_, err = svc.Register(form)
	assert.ErrorIs(t, err, ErrEmailTaken)

	padded := form
	padded.Email = "  sam@EXAMPLE.com "
	_, err = svc.Register(padded)
	assert.ErrorIs(t, err, ErrEmailTaken, "padded email is the same account")

	bad := form
	bad.Password = "123"
	bad.ConfirmPassword = "123"
	_, err = svc.Register(bad)
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "password")
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.UpdateProfile("X", "x@example.com", "")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = svc.Register(form)
	require.NoError(t, err)

	u, err := svc.UpdateProfile("Sam Lee", "sam.lee@example.com", "5551234567")
	require.NoError(t, err)
	assert.Equal(t, "Sam Lee", u.Name)

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "sam.lee@example.com", cur.Email)

	u, err = svc.UpdateProfile("Sam Lee", " Sam.Lee@Example.com ", "")
	require.NoError(t, err)
	assert.Equal(t, "sam.lee@example.com", u.Email)
}
