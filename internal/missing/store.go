package missing

import (
	"context"

	id "careflow/pkg/domain"
)

// Store persists missing episodes. Implementations return sentinel errors
// (ErrNotFound, ErrStaleVersion) which the service translates into domain
// errors with context.
type Store interface {
	Save(ctx context.Context, e Episode) error
	Find(ctx context.Context, episodeID id.EpisodeID) (Episode, error)
	// Update applies the record if the stored version still matches
	// e.Version, then bumps the version. Returns ErrStaleVersion otherwise.
	Update(ctx context.Context, e Episode) error
	// FindOpenByPlacement returns the placement's single open episode
	// (REPORTED or ACTIVE), or ErrNotFound when there is none.
	FindOpenByPlacement(ctx context.Context, placementID id.PlacementID) (Episode, error)
	ListByPlacement(ctx context.Context, placementID id.PlacementID) ([]Episode, error)
}

// StoreTx provides the transactional boundary for the one-open-episode
// invariant. The key serialises writers for the same placement; unrelated
// placements proceed in parallel.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(store Store) error) error
}
