package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the record document as a single JSON file. Every Save is
// a full rewrite staged through a temp file and renamed into place, so a
// crashed write never leaves a half-written document behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the JSON document at path, writing an empty document
// first if none exists.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat data file: %w", err)
		}
		if err := fs.write(Snapshot{Users: []User{}, Applications: []Application{}}); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Load reads and decodes the entire document.
func (fs *FileStore) Load(_ context.Context) (Snapshot, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.read()
}

// Save overwrites the entire document.
func (fs *FileStore) Save(_ context.Context, snap Snapshot) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write(snap)
}

// Update applies fn to the current document and writes the result back,
// holding the store lock across the whole cycle.
func (fs *FileStore) Update(_ context.Context, fn func(*Snapshot) error) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	snap, err := fs.read()
	if err != nil {
		return err
	}
	if err := fn(&snap); err != nil {
		return err
	}
	return fs.write(snap)
}

func (fs *FileStore) read() (Snapshot, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read data file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return snap, nil
}

func (fs *FileStore) write(snap Snapshot) error {
	if snap.Users == nil {
		snap.Users = []User{}
	}
	if snap.Applications == nil {
		snap.Applications = []Application{}
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage data file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close data file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}
