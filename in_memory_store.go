package svo

import (
	"context"
	"fmt"
	"sync"
)

// Persist is the interface for storing and loading serialized snapshots.
// Names are content hashes, so the bytes stored under a name never change.
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(context.Context, string, []byte) error
	// Load retrieves the previously-stored bytes by the given name.
	Load(context.Context, string) ([]byte, error)
}

type inMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewInMemoryStore provides a Persist that keeps snapshots in a map,
// usually for testing. Stored bytes are copied.
func NewInMemoryStore() Persist {
	return &inMemoryStore{snapshots: map[string][]byte{}}
}

func (m *inMemoryStore) Store(_ context.Context, name string, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[name] = append([]byte(nil), b...)
	return nil
}

func (m *inMemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.snapshots[name]
	if !ok {
		return nil, fmt.Errorf("in-memory snapshot %s: %w", name, ErrNotFound)
	}
	return b, nil
}
