package child

import (
	"context"
	"sync"

	id "careflow/pkg/domain"
	"careflow/pkg/platform/sentinel"
)

// MemoryStore is the in-memory Store used by unit tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	children map[id.ChildID]Child
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{children: make(map[id.ChildID]Child)}
}

func (s *MemoryStore) Save(_ context.Context, c Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.children[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.children[c.ID] = c
	return nil
}

func (s *MemoryStore) Find(_ context.Context, childID id.ChildID) (Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.children[childID]
	if !ok {
		return Child{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) Update(_ context.Context, c Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.children[c.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.children[c.ID] = c
	return nil
}
