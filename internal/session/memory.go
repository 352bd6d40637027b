// Package session holds the token registries backing auth.TokenService.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/roster/internal/auth"
)

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]auth.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]auth.Session),
	}
}

func (s *MemoryStore) Save(ctx context.Context, sess auth.Session) error {
	s.mu.Lock()
	s.items[sess.ID] = sess
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, id string) (auth.Session, error) {
	s.mu.RLock()
	sess, ok := s.items[id]
	s.mu.RUnlock()

	if !ok {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok || sess.RevokedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	sess.RevokedAt = &now
	s.items[id] = sess

	return nil
}
