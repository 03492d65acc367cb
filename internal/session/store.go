// Package session holds the client-side cache of the signed-in user record.
//
// A Store is scoped to one signed-in session: the dashboard loader populates
// it on first load and sign-out clears it.
package session

import (
	"context"
	"sync"

	"github.com/nfrund/accountdash/internal/domain"
)

// Store caches the current user record.
type Store interface {
	// Get returns the cached record, or nil, nil when nothing is cached.
	Get(ctx context.Context) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	user *domain.User
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user.Clone()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
