package risk

import (
	"context"

	id "careflow/pkg/domain"
)

// Store persists assessments append-only: a new assessment supersedes the
// previous one for the same placement, which is flagged, never deleted.
type Store interface {
	Append(ctx context.Context, a Assessment) error
	Latest(ctx context.Context, placementID id.PlacementID) (Assessment, error)
	History(ctx context.Context, placementID id.PlacementID) ([]Assessment, error)
	// LatestByProvider returns the newest non-superseded assessment for each
	// placement with the given provider.
	LatestByProvider(ctx context.Context, providerID id.ProviderID) ([]Assessment, error)
	// ListCurrentInBands returns current assessments whose band is in the
	// given set, for the high-risk dashboard listing.
	ListCurrentInBands(ctx context.Context, bands []Band) ([]Assessment, error)
}

// Cache holds the latest assessment per placement for cheap reads from the
// dashboard and the matching tie-break. Misses are normal; the store is the
// source of truth.
type Cache interface {
	Put(ctx context.Context, a Assessment) error
	Get(ctx context.Context, placementID id.PlacementID) (Assessment, bool, error)
}
