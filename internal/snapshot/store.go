// Package snapshot persists the full catalog state as three independent
// keyed blobs: a JSON array of products, a JSON array of branches and a
// plain currency code. There is no schema versioning; a blob that fails to
// decode falls back to its default rather than corrupting in-memory state.
package snapshot

import (
	"context"
	"errors"
	"sync"
)

// ErrNoBlob reports an absent key. Absence is not a failure: every blob has
// a defined default at load time.
var ErrNoBlob = errors.New("snapshot: blob not found")

// Store is a keyed blob store. Implementations must treat each Put as an
// atomic replacement of the key's value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// MemStore is an in-memory Store, used in tests and as a throwaway backend.
type MemStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string][]byte)}
}

func (s *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.m[key]
	if !ok {
		return nil, ErrNoBlob
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(data))
	copy(out, data)
	s.m[key] = out
	return nil
}
