package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSession indicates the session backing store failed; the caller must not
// treat the operation as having taken effect.
var ErrSession = errors.New("session store failure")

// Identity is the server-side payload a session token resolves to.
type Identity struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

// Store is the session backing store. Expiry is the store's responsibility:
// once the TTL passed to Set elapses, Get must report the token as unknown.
type Store interface {
	Set(ctx context.Context, token string, id Identity, ttl time.Duration) error
	Get(ctx context.Context, token string) (Identity, bool, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues, resolves, and destroys sessions over a backing store.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager whose sessions live for ttl from
// issuance.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// TTL returns the fixed session lifetime, which doubles as the cookie max-age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a fresh session for the identity and returns its opaque token.
func (m *Manager) Issue(ctx context.Context, id Identity) (string, error) {
	token := uuid.NewString()
	if err := m.store.Set(ctx, token, id, m.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSession, err)
	}
	return token, nil
}

// Resolve looks up the identity behind a token. It is read-only: resolving a
// token never extends, shortens, or destroys the session. A token that is
// unknown or expired resolves to (zero, false, nil).
func (m *Manager) Resolve(ctx context.Context, token string) (Identity, bool, error) {
	if token == "" {
		return Identity{}, false, nil
	}
	id, ok, err := m.store.Get(ctx, token)
	if err != nil {
		return Identity{}, false, fmt.Errorf("%w: %v", ErrSession, err)
	}
	return id, ok, nil
}

// Destroy invalidates the token. On a backing-store error the session may
// still be live, and the error says so.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrSession, err)
	}
	return nil
}
