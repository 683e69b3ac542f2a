// Package sessions provides an in-memory session store, primarily for tests
// and single-node runs without a directory database.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/ports"
)

// MemoryStore is an in-memory implementation of the SessionStore interface.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session // keyed by secret
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*core.Session)}
}

var _ ports.SessionStore = (*MemoryStore)(nil)

// Save stores a session keyed by its secret.
func (s *MemoryStore) Save(ctx context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Secret] = session
	return nil
}

// PurgeExpired removes sessions whose expiry precedes now.
func (s *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for secret, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, secret)
			n++
		}
	}
	return n, nil
}
