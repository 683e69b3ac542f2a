package blob

import (
	"context"
	"sync"

	"github.com/songclash/songclash/ports"
)

// MemoryStore is an in-memory implementation of the BlobStore interface.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

var _ ports.BlobStore = (*MemoryStore)(nil)

// Exists reports whether a blob was stored for id.
func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[id]
	return ok, nil
}

// Store keeps a copy of data under id.
func (s *MemoryStore) Store(ctx context.Context, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[id] = cp
	return nil
}
