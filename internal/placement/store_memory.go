package placement

import (
	"context"
	"sort"
	"sync"
	"time"

	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
	"careflow/pkg/platform/sentinel"
)

// MemoryStore is the in-memory Store used by unit tests and local runs.
type MemoryStore struct {
	mu         sync.RWMutex
	placements map[id.PlacementID]Placement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{placements: make(map[id.PlacementID]Placement)}
}

func (s *MemoryStore) Save(_ context.Context, p Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.placements[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.placements[p.ID] = p
	return nil
}

func (s *MemoryStore) Find(_ context.Context, placementID id.PlacementID) (Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.placements[placementID]
	if !ok {
		return Placement{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Update(_ context.Context, p Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.placements[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != p.Version {
		return sentinel.ErrStaleVersion
	}
	p.Version++
	s.placements[p.ID] = p
	return nil
}

func (s *MemoryStore) FindActiveByChild(_ context.Context, childID id.ChildID) (Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.placements {
		if p.ChildID == childID && p.Status == StatusActive {
			return p, nil
		}
	}
	return Placement{}, sentinel.ErrNotFound
}

func (s *MemoryStore) ListByChild(_ context.Context, childID id.ChildID) ([]Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Placement
	for _, p := range s.placements {
		if p.ChildID == childID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// shardedTx serialises invariant-bearing writes per key using sharded
// mutexes, so two concurrent activations for the same child cannot both pass
// the one-active-placement check. Postgres deployments get the same property
// from row versioning; this is the in-memory equivalent.
const numTxShards = 64

// defaultTxTimeout bounds how long a writer may hold a shard.
const defaultTxTimeout = 5 * time.Second

type shardedTx struct {
	shards [numTxShards]sync.Mutex
	store  Store
}

// NewShardedTx wraps a store with a per-key transactional boundary.
func NewShardedTx(store Store) StoreTx {
	return &shardedTx{store: store}
}

func (t *shardedTx) RunInTx(ctx context.Context, key string, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	shard := hashKey(key) % numTxShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(t.store)
}

// hashKey uses FNV-1a for even shard distribution.
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
