//go:build integration

package placement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careflow/internal/placement"
	id "careflow/pkg/domain"
	"careflow/pkg/platform/sentinel"
	"careflow/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) *placement.PostgresStore {
	t.Helper()
	pc := containers.NewPostgresContainer(t, "../../migrations/0001_init.sql")
	return placement.NewPostgresStore(pc.Pool)
}

func testPlacement(status placement.Status) placement.Placement {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return placement.Placement{
		ID:         id.NewPlacementID(),
		ChildID:    id.NewChildID(),
		ProviderID: id.NewProviderID(),
		Type:       placement.TypeFoster,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestPostgresStore_SaveAndFind(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	p := testPlacement(placement.StatusProposed)
	require.NoError(t, store.Save(ctx, p))

	got, err := store.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.ChildID, got.ChildID)
	assert.Equal(t, placement.StatusProposed, got.Status)

	_, err = store.Find(ctx, id.NewPlacementID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_UpdateVersionCheck(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	p := testPlacement(placement.StatusProposed)
	require.NoError(t, store.Save(ctx, p))

	p.Status = placement.StatusActive
	require.NoError(t, store.Update(ctx, p))

	// The stored version moved on; replaying the same update must fail.
	err := store.Update(ctx, p)
	assert.ErrorIs(t, err, sentinel.ErrStaleVersion)

	missing := testPlacement(placement.StatusProposed)
	assert.ErrorIs(t, store.Update(ctx, missing), sentinel.ErrNotFound)
}

func TestPostgresStore_OneActivePerChildIndex(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	first := testPlacement(placement.StatusActive)
	require.NoError(t, store.Save(ctx, first))

	second := testPlacement(placement.StatusActive)
	second.ChildID = first.ChildID
	err := store.Save(ctx, second)
	assert.ErrorIs(t, err, sentinel.ErrConflict,
		"partial unique index backs the one-active-placement invariant")

	// An ENDED placement for the same child is fine.
	ended := testPlacement(placement.StatusEnded)
	ended.ChildID = first.ChildID
	assert.NoError(t, store.Save(ctx, ended))

	active, err := store.FindActiveByChild(ctx, first.ChildID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestPostgresTx_ConcurrentActivation(t *testing.T) {
	pc := containers.NewPostgresContainer(t, "../../migrations/0001_init.sql")
	store := placement.NewPostgresStore(pc.Pool)
	tx := placement.NewPostgresTx(pc.Pool)
	ctx := context.Background()

	childID := id.NewChildID()
	var proposals []placement.Placement
	for i := 0; i < 4; i++ {
		p := testPlacement(placement.StatusProposed)
		p.ChildID = childID
		require.NoError(t, store.Save(ctx, p))
		proposals = append(proposals, p)
	}

	results := make(chan error, len(proposals))
	for _, p := range proposals {
		go func(target placement.Placement) {
			results <- tx.RunInTx(ctx, childID.String(), func(s placement.Store) error {
				current, err := s.Find(ctx, target.ID)
				if err != nil {
					return err
				}
				if _, err := s.FindActiveByChild(ctx, childID); err == nil {
					return sentinel.ErrConflict
				} else if !errors.Is(err, sentinel.ErrNotFound) {
					return err
				}
				current.Status = placement.StatusActive
				return s.Update(ctx, current)
			})
		}(p)
	}

	var succeeded int
	for range proposals {
		if err := <-results; err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent activation may win")

	active, err := store.FindActiveByChild(ctx, childID)
	require.NoError(t, err)
	assert.Equal(t, placement.StatusActive, active.Status)
}
