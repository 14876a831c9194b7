package missing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careflow/internal/alerts"
	"careflow/internal/placement"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
	"careflow/pkg/requestcontext"
)

type fixture struct {
	svc        *Service
	publisher  *alerts.MemoryPublisher
	placements *placement.MemoryStore
}

func newFixture() fixture {
	store := NewMemoryStore()
	placements := placement.NewMemoryStore()
	publisher := alerts.NewMemoryPublisher()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, NewShardedTx(store), placementFinder{placements}, publisher, logger, nil)
	return fixture{svc: svc, publisher: publisher, placements: placements}
}

// placementFinder adapts the bare store to the PlacementReader port with the
// same error mapping the placement service applies.
type placementFinder struct {
	store *placement.MemoryStore
}

func (f placementFinder) Find(ctx context.Context, placementID id.PlacementID) (placement.Placement, error) {
	p, err := f.store.Find(ctx, placementID)
	if err != nil {
		return placement.Placement{}, dErrors.Newf(dErrors.CodeNotFound, "placement %s not found", placementID)
	}
	return p, nil
}

func (f fixture) activePlacement(t *testing.T) placement.Placement {
	t.Helper()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	p := placement.Placement{
		ID:         id.NewPlacementID(),
		ChildID:    id.NewChildID(),
		ProviderID: id.NewProviderID(),
		Type:       placement.TypeFoster,
		Status:     placement.StatusActive,
		StartDate:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.placements.Save(context.Background(), p))
	return p
}

func TestReportMissing_OpensActiveEpisode(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	reported := time.Date(2025, 3, 12, 22, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), reported)

	e, err := f.svc.ReportMissing(ctx, ReportParams{
		PlacementID:       p.ID,
		LastKnownLocation: "bus station, town centre",
		PoliceNotified:    true,
		Triggers:          []Trigger{TriggerOvernight, TriggerPriorEpisodes},
	})
	require.NoError(t, err)
	assert.Equal(t, StateActive, e.State, "report lands in ACTIVE with no REPORTED hold")
	assert.Equal(t, RiskMedium, e.RiskLevel)
	assert.Equal(t, p.ChildID, e.ChildID)
	assert.Equal(t, reported, e.ReportedAt)

	raised := f.publisher.ByKind(alerts.KindMissingReported)
	require.Len(t, raised, 1)
	assert.ElementsMatch(t,
		[]alerts.Audience{alerts.AudienceSocialWorker, alerts.AudiencePoliceLiaison, alerts.AudienceDutyTeam},
		raised[0].Audiences)
	assert.Equal(t, "true", raised[0].Detail["police_notified"])
}

func TestReportMissing_AttributesActor(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	ctx := requestcontext.WithActorID(context.Background(), "caseworker-142")

	_, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.NoError(t, err)

	raised := f.publisher.ByKind(alerts.KindMissingReported)
	require.Len(t, raised, 1)
	assert.Equal(t, "caseworker-142", raised[0].Detail["reported_by"])

	// Without an actor on the request the key stays absent.
	p2 := f.activePlacement(t)
	_, err = f.svc.ReportMissing(context.Background(), ReportParams{PlacementID: p2.ID})
	require.NoError(t, err)
	raised = f.publisher.ByKind(alerts.KindMissingReported)
	require.Len(t, raised, 2)
	assert.NotContains(t, raised[1].Detail, "reported_by")
}

func TestReportMissing_SecondOpenEpisodeConflicts(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	ctx := context.Background()

	first, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.NoError(t, err)

	_, err = f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Contains(t, err.Error(), first.ID.String())
}

func TestReportMissing_RequiresActivePlacement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: id.NewPlacementID()})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	ended := f.activePlacement(t)
	ended.Status = placement.StatusEnded
	require.NoError(t, f.placements.Update(ctx, ended))

	_, err = f.svc.ReportMissing(ctx, ReportParams{PlacementID: ended.ID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.Contains(t, err.Error(), "ENDED")
}

func TestReportMissing_UnknownTriggerRejected(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)

	_, err := f.svc.ReportMissing(context.Background(), ReportParams{
		PlacementID: p.ID,
		Triggers:    []Trigger{Trigger("FULL_MOON")},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// TestReportMissing_ConcurrentReports drives parallel reports at one
// placement; the transactional boundary must let exactly one through.
func TestReportMissing_ConcurrentReports(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)
}

func TestMarkReturned_FromActiveOnly(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	reported := time.Date(2025, 3, 12, 22, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), reported)

	e, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.NoError(t, err)

	returned := reported.Add(14 * time.Hour)
	ctx = requestcontext.WithTime(context.Background(), returned)
	got, err := f.svc.MarkReturned(ctx, ReturnParams{
		EpisodeID: e.ID,
		Location:  "friend's address",
		Condition: "unharmed",
	})
	require.NoError(t, err)
	assert.Equal(t, StateReturned, got.State)
	require.NotNil(t, got.ReturnedAt)
	assert.Equal(t, returned, *got.ReturnedAt)
	assert.True(t, got.ReturnInterviewDue, "return raises the independent interview obligation")

	raised := f.publisher.ByKind(alerts.KindMissingReturned)
	require.Len(t, raised, 1)
	assert.Contains(t, raised[0].Message, "return interview")

	// A second return on the same episode is a state error, not a no-op.
	_, err = f.svc.MarkReturned(ctx, ReturnParams{EpisodeID: e.ID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestClose_FromReturnedOnly(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	ctx := context.Background()

	e, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.NoError(t, err)

	_, err = f.svc.Close(ctx, e.ID)
	require.Error(t, err, "close straight from ACTIVE must be rejected")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.Contains(t, err.Error(), string(StateActive))

	_, err = f.svc.MarkReturned(ctx, ReturnParams{EpisodeID: e.ID})
	require.NoError(t, err)

	closed, err := f.svc.Close(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, closed.State)
	require.NotNil(t, closed.ClosedAt)

	_, err = f.svc.Close(ctx, e.ID)
	require.Error(t, err, "closed is terminal")
}

func TestReportMissing_AllowedAgainAfterReturn(t *testing.T) {
	f := newFixture()
	p := f.activePlacement(t)
	ctx := context.Background()

	first, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.NoError(t, err)
	_, err = f.svc.MarkReturned(ctx, ReturnParams{EpisodeID: first.ID})
	require.NoError(t, err)

	second, err := f.svc.ReportMissing(ctx, ReportParams{PlacementID: p.ID})
	require.NoError(t, err, "a RETURNED episode no longer blocks a new report")
	assert.NotEqual(t, first.ID, second.ID)

	history, err := f.svc.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestFind_Unknown(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Find(context.Background(), id.NewEpisodeID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
