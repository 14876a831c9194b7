package child

import (
	"context"

	id "careflow/pkg/domain"
)

// Store persists child records. Implementations return sentinel.ErrNotFound
// for missing records; the service translates to domain errors.
type Store interface {
	Save(ctx context.Context, c Child) error
	Find(ctx context.Context, childID id.ChildID) (Child, error)
	Update(ctx context.Context, c Child) error
}
