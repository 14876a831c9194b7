package risk

import (
	"context"
	"sort"
	"sync"

	id "careflow/pkg/domain"
	"careflow/pkg/platform/sentinel"
)

// MemoryStore is the in-memory Store used by unit tests and local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	byPlacement map[id.PlacementID][]Assessment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byPlacement: make(map[id.PlacementID][]Assessment)}
}

func (s *MemoryStore) Append(_ context.Context, a Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.byPlacement[a.PlacementID]
	for i := range history {
		history[i].Superseded = true
	}
	s.byPlacement[a.PlacementID] = append(history, a)
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, placementID id.PlacementID) (Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.byPlacement[placementID]
	if len(history) == 0 {
		return Assessment{}, sentinel.ErrNotFound
	}
	return history[len(history)-1], nil
}

func (s *MemoryStore) History(_ context.Context, placementID id.PlacementID) ([]Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.byPlacement[placementID]
	out := make([]Assessment, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) LatestByProvider(_ context.Context, providerID id.ProviderID) ([]Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Assessment
	for _, history := range s.byPlacement {
		if len(history) == 0 {
			continue
		}
		latest := history[len(history)-1]
		if latest.ProviderID == providerID {
			out = append(out, latest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListCurrentInBands(_ context.Context, bands []Band) ([]Assessment, error) {
	wanted := make(map[Band]bool, len(bands))
	for _, b := range bands {
		wanted[b] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Assessment
	for _, history := range s.byPlacement {
		if len(history) == 0 {
			continue
		}
		latest := history[len(history)-1]
		if wanted[latest.Band] {
			out = append(out, latest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// MemoryCache is the Cache used when redis is not configured.
type MemoryCache struct {
	mu     sync.RWMutex
	latest map[id.PlacementID]Assessment
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{latest: make(map[id.PlacementID]Assessment)}
}

func (c *MemoryCache) Put(_ context.Context, a Assessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest[a.PlacementID] = a
	return nil
}

func (c *MemoryCache) Get(_ context.Context, placementID id.PlacementID) (Assessment, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.latest[placementID]
	return a, ok, nil
}
