package placement

import (
	"context"

	id "careflow/pkg/domain"
)

// Store persists placements. Implementations return sentinel errors
// (ErrNotFound, ErrStaleVersion) which the service translates into domain
// errors with context.
type Store interface {
	Save(ctx context.Context, p Placement) error
	Find(ctx context.Context, placementID id.PlacementID) (Placement, error)
	// Update applies the record if the stored version still matches
	// p.Version, then bumps the version. Returns ErrStaleVersion otherwise.
	Update(ctx context.Context, p Placement) error
	// FindActiveByChild returns the child's single ACTIVE placement, or
	// ErrNotFound when there is none.
	FindActiveByChild(ctx context.Context, childID id.ChildID) (Placement, error)
	ListByChild(ctx context.Context, childID id.ChildID) ([]Placement, error)
}

// StoreTx provides the transactional boundary for the one-active-placement
// invariant. The key serialises writers for the same child; unrelated
// children proceed in parallel.
type StoreTx interface {
	RunInTx(ctx context.Context, key string, fn func(store Store) error) error
}
