// ABOUTME: Local account registry with a single signed-in user.
// ABOUTME: Passwords are stored as bcrypt hashes; the registry is append-only.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
	"github.com/harperreed/healhub/internal/validate"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Service manages the account registry held in the state store.
type Service struct {
	store *state.Store
	cost  int
}

// NewService builds a Service. Tests may lower cost to bcrypt.MinCost.
func NewService(store *state.Store, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: store, cost: cost}
}

// Register creates an account and signs it in.
func (s *Service) Register(form validate.RegisterForm) (models.User, error) {
	if err := validate.Register(form); err != nil {
		return models.User{}, err
	}

	email := normalizeEmail(form.Email)
	if _, ok := s.findByEmail(email); ok {
		return models.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := s.store.Users().Add(models.User{
		Name:         strings.TrimSpace(form.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(form.Phone),
	})
	s.signIn(user)
	return user.Public(), nil
}

// Login signs in an existing account.
func (s *Service) Login(email, password string) (models.User, error) {
	if err := validate.Login(email, password); err != nil {
		return models.User{}, err
	}

	user, ok := s.findByEmail(normalizeEmail(email))
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	s.signIn(user)
	return user.Public(), nil
}

// Logout clears the signed-in user. The registry is untouched.
func (s *Service) Logout() {
	s.store.CurrentUser().Set(nil)
}

// Current returns the signed-in user.
func (s *Service) Current() (models.User, error) {
	u := s.store.CurrentUser().Get()
	if u == nil {
		return models.User{}, ErrNotSignedIn
	}
	return *u, nil
}

// UpdateProfile changes the signed-in user's name, email, and phone.
func (s *Service) UpdateProfile(name, email, phone string) (models.User, error) {
	cur, err := s.Current()
	if err != nil {
		return models.User{}, err
	}
	if err := validate.Profile(name, email, phone); err != nil {
		return models.User{}, err
	}

	email = normalizeEmail(email)
	if other, ok := s.findByEmail(email); ok && other.ID != cur.ID {
		return models.User{}, ErrEmailTaken
	}

	updated, ok := s.store.Users().Modify(cur.ID, func(u models.User) models.User {
		u.Name = strings.TrimSpace(name)
		u.Email = email
		u.Phone = strings.TrimSpace(phone)
		return u
	})
	if !ok {
		return models.User{}, ErrNotSignedIn
	}
	s.signIn(updated)
	return updated.Public(), nil
}

func (s *Service) signIn(u models.User) {
	pub := u.Public()
	s.store.CurrentUser().Set(&pub)
}

func (s *Service) findByEmail(email string) (models.User, bool) {
	for _, u := range s.store.Users().All() {
		if normalizeEmail(u.Email) == email {
			return u, true
		}
	}
	return models.User{}, false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
