// Package memory provides an in-memory SpecStore, the default backend for
// single-process deployments and tests.
package memory

import (
	"context"
	"sync"

	"canopy/pkg/domain"
)

// Store implements ports.SpecStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Specification
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Specification),
	}
}

// Save persists the specification in memory. The stored value is a deep
// copy so later caller mutations don't reach the store.
func (s *Store) Save(ctx context.Context, sessionID string, sp *domain.Specification) error {
	copied := sp.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves the specification. A copy is returned so the caller
// can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Specification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSpecNotFound
	}
	return sp.Clone(), nil
}

// Delete removes the specification.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns session ids with a stored specification.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
