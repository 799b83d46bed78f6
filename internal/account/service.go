package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/srivaari-capital/backend/internal/store"
)

var (
	// ErrMissingField indicates a required signup/login field was absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrDuplicateEmail indicates the email is already registered, compared
	// case-insensitively.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and password mismatch so
	// responses carry no account-enumeration signal.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SignupInput carries the fields accepted at registration. Name is optional.
type SignupInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
}

// Service manages borrower accounts.
type Service struct {
	records store.Store
}

// NewService creates a new account service over the given record store.
func NewService(records store.Store) *Service {
	return &Service{records: records}
}

// Signup registers a new user. Emails are lowercased and must be unique
// across all existing users regardless of case.
func (s *Service) Signup(ctx context.Context, in SignupInput) (store.User, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if phone == "" || email == "" || in.Password == "" {
		return store.User{}, ErrMissingField
	}

	// Hash outside the store lock: bcrypt dominates request latency.
	digest, err := HashPassword(in.Password)
	if err != nil {
		return store.User{}, err
	}

	var user store.User
	err = s.records.Update(ctx, func(snap *store.Snapshot) error {
		for _, u := range snap.Users {
			if strings.EqualFold(u.Email, email) {
				return ErrDuplicateEmail
			}
		}
		user = store.User{
			ID:           snap.NextUserID(),
			Name:         name,
			Phone:        phone,
			Email:        email,
			PasswordHash: digest,
			CreatedAt:    time.Now().UTC(),
		}
		snap.Users = append(snap.Users, user)
		return nil
	})
	if err != nil {
		return store.User{}, err
	}

	return user, nil
}

// Login verifies the email/password pair and returns the matching user.
func (s *Service) Login(ctx context.Context, email, password string) (store.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return store.User{}, ErrMissingField
	}

	snap, err := s.records.Load(ctx)
	if err != nil {
		return store.User{}, err
	}

	for _, u := range snap.Users {
		if strings.EqualFold(u.Email, email) {
			if !VerifyPassword(password, u.PasswordHash) {
				return store.User{}, ErrInvalidCredentials
			}
			return u, nil
		}
	}
	return store.User{}, ErrInvalidCredentials
}
