package store

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemory creates an in-memory record store useful for unit tests.
func NewMemory() Store {
	return &memoryStore{snap: Snapshot{Users: []User{}, Applications: []Application{}}}
}

func (m *memoryStore) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone(), nil
}

func (m *memoryStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.clone()
	return nil
}

func (m *memoryStore) Update(_ context.Context, fn func(*Snapshot) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snap.clone()
	if err := fn(&snap); err != nil {
		return err
	}
	m.snap = snap
	return nil
}
