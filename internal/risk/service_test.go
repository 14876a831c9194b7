package risk

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careflow/internal/alerts"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
)

func newTestService() (*Service, *alerts.MemoryPublisher) {
	publisher := alerts.NewMemoryPublisher()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewMemoryStore(), NewMemoryCache(), publisher, logger), publisher
}

func quietParams() AssessParams {
	return AssessParams{
		ChildID:     id.NewChildID(),
		PlacementID: id.NewPlacementID(),
		ProviderID:  id.NewProviderID(),
		Input:       Input{DaysSinceLastMove: -1},
	}
}

func TestAssess_PersistsAndCaches(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	params := quietParams()
	a, err := svc.Assess(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, BandMinimal, a.Band)

	latest, err := svc.Latest(ctx, params.PlacementID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, latest.ID)
	assert.Equal(t, a.Factors, latest.Factors, "a cached read still carries the factor breakdown")
	assert.NotEmpty(t, latest.Factors)
}

func TestAssess_SupersedesButKeepsHistory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	params := quietParams()
	first, err := svc.Assess(ctx, params)
	require.NoError(t, err)

	params.Input = Input{TransitionCount: 4, DaysSinceLastMove: 5, IncidentCount: 6}
	second, err := svc.Assess(ctx, params)
	require.NoError(t, err)

	history, err := svc.History(ctx, params.PlacementID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.True(t, history[0].Superseded)
	assert.Equal(t, second.ID, history[1].ID)
	assert.False(t, history[1].Superseded)
}

func TestAssess_EscalationEmitsAdvisory(t *testing.T) {
	svc, publisher := newTestService()
	ctx := context.Background()

	params := quietParams()
	_, err := svc.Assess(ctx, params)
	require.NoError(t, err)
	assert.Empty(t, publisher.ByKind(alerts.KindRiskBandEscalated), "first assessment never escalates")

	params.Input = Input{TransitionCount: 5, DaysSinceLastMove: 2, IncidentCount: 8, EscalationCount: 4}
	worse, err := svc.Assess(ctx, params)
	require.NoError(t, err)
	require.True(t, worse.Band.WorseThan(BandMinimal))

	escalations := publisher.ByKind(alerts.KindRiskBandEscalated)
	require.Len(t, escalations, 1)
	assert.Equal(t, "MINIMAL", escalations[0].Detail["from_band"])
	assert.Equal(t, string(worse.Band), escalations[0].Detail["to_band"])

	// Improvement or staying level is not an escalation.
	params.Input = Input{DaysSinceLastMove: -1}
	_, err = svc.Assess(ctx, params)
	require.NoError(t, err)
	assert.Len(t, publisher.ByKind(alerts.KindRiskBandEscalated), 1)
}

func TestHighRisk_ListsWorstFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	low := quietParams()
	_, err := svc.Assess(ctx, low)
	require.NoError(t, err)

	high := quietParams()
	high.Input = Input{TransitionCount: 4, DaysSinceLastMove: 5, IncidentCount: 5, MissedVisits: 3}
	highA, err := svc.Assess(ctx, high)
	require.NoError(t, err)

	critical := quietParams()
	critical.Input = Input{TransitionCount: 6, DaysSinceLastMove: 1, IncidentCount: 9, MissedVisits: 4, EscalationCount: 5}
	criticalA, err := svc.Assess(ctx, critical)
	require.NoError(t, err)

	require.True(t, highA.Band == BandHigh || highA.Band == BandCritical, "fixture should land high, got %s", highA.Band)
	require.Equal(t, BandCritical, criticalA.Band)

	listed, err := svc.HighRisk(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2, "minimal-band placements stay off the high-risk list")
	assert.Equal(t, criticalA.ID, listed[0].ID)
	assert.Equal(t, highA.ID, listed[1].ID)
}

func TestProviderRisk_WorstAcrossPlacements(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	providerID := id.NewProviderID()

	mild := quietParams()
	mild.ProviderID = providerID
	mild.Input = Input{TransitionCount: 1, DaysSinceLastMove: 100}
	mildA, err := svc.Assess(ctx, mild)
	require.NoError(t, err)

	rough := quietParams()
	rough.ProviderID = providerID
	rough.Input = Input{TransitionCount: 4, DaysSinceLastMove: 10, IncidentCount: 5}
	roughA, err := svc.Assess(ctx, rough)
	require.NoError(t, err)
	require.Greater(t, roughA.Score, mildA.Score)

	score, err := svc.ProviderRisk(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, roughA.Score, score)

	unknown, err := svc.ProviderRisk(ctx, id.NewProviderID())
	require.NoError(t, err)
	assert.Zero(t, unknown, "no history means zero risk, not an error")
}

func TestLatest_UnknownPlacement(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Latest(context.Background(), id.NewPlacementID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
