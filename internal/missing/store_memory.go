package missing

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
	mu       sync.RWMutex
	episodes map[id.EpisodeID]Episode
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{episodes: make(map[id.EpisodeID]Episode)}
}

func (s *MemoryStore) Save(_ context.Context, e Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.episodes[e.ID]; exists {
		return sentinel.ErrConflict
	}
	s.episodes[e.ID] = e
	return nil
}

func (s *MemoryStore) Find(_ context.Context, episodeID id.EpisodeID) (Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.episodes[episodeID]
	if !ok {
		return Episode{}, sentinel.ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Update(_ context.Context, e Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.episodes[e.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != e.Version {
		return sentinel.ErrStaleVersion
	}
	e.Version++
	s.episodes[e.ID] = e
	return nil
}

func (s *MemoryStore) FindOpenByPlacement(_ context.Context, placementID id.PlacementID) (Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.episodes {
		if e.PlacementID == placementID && e.State.open() {
			return e, nil
		}
	}
	return Episode{}, sentinel.ErrNotFound
}

func (s *MemoryStore) ListByPlacement(_ context.Context, placementID id.PlacementID) ([]Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Episode
	for _, e := range s.episodes {
		if e.PlacementID == placementID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.Before(out[j].ReportedAt) })
	return out, nil
}

// shardedTx serialises invariant-bearing writes per key using sharded
// mutexes, so two concurrent reports for the same placement cannot both pass
// the one-open-episode check. Postgres deployments get the same property
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
