package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	identity Identity
	deadline time.Time
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

// NewMemoryStore creates an in-process session store for development and
// tests. Expired entries are dropped lazily on lookup.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]memoryEntry)}
}

func (m *memoryStore) Set(_ context.Context, token string, id Identity, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = memoryEntry{identity: id, deadline: time.Now().Add(ttl)}
	return nil
}

func (m *memoryStore) Get(_ context.Context, token string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[token]
	if !ok {
		return Identity{}, false, nil
	}
	if time.Now().After(entry.deadline) {
		delete(m.sessions, token)
		return Identity{}, false, nil
	}
	return entry.identity, true, nil
}

func (m *memoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
