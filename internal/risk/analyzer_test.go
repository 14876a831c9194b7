package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assessTime = time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

func TestAnalyze_QuietHistoryIsMinimal(t *testing.T) {
	out := Analyze(Input{DaysSinceLastMove: -1}, assessTime)

	assert.Equal(t, 0.0, out.Score)
	assert.Equal(t, BandMinimal, out.Band)
	assert.Equal(t, assessTime.Add(90*24*time.Hour), out.NextReview)
}

func TestAnalyze_SaturatedHistoryIsCritical(t *testing.T) {
	out := Analyze(Input{
		TransitionCount:   6,
		DaysSinceLastMove: 0,
		IncidentCount:     10,
		MissedVisits:      5,
		EscalationCount:   6,
	}, assessTime)

	assert.Equal(t, 100.0, out.Score)
	assert.Equal(t, BandCritical, out.Band)
	assert.Equal(t, assessTime.Add(2*24*time.Hour), out.NextReview, "critical band means review within days")
}

func TestAnalyze_FactorsAreExplainable(t *testing.T) {
	out := Analyze(Input{
		TransitionCount:   2,
		DaysSinceLastMove: 90,
		IncidentCount:     1,
	}, assessTime)

	require.Len(t, out.Factors, 5, "every factor appears even when zero")

	byKind := make(map[FactorKind]Factor)
	var weightSum float64
	for _, f := range out.Factors {
		byKind[f.Kind] = f
		weightSum += f.Weight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9, "weights are shares of the aggregate")

	moves := byKind[FactorPlacementMoves]
	assert.Equal(t, 2.0, moves.Raw)
	assert.Equal(t, 40.0, moves.Score)

	recency := byKind[FactorMoveRecency]
	assert.Equal(t, 90.0, recency.Raw)
	assert.Equal(t, 50.0, recency.Score, "half the recency window scores half")

	// Aggregate equals the weighted sum of the published factors.
	var expected float64
	for _, f := range out.Factors {
		expected += f.Score * f.Weight
	}
	assert.InDelta(t, expected, out.Score, 0.01)
}

func TestAnalyze_BandThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{0, BandMinimal},
		{19.99, BandMinimal},
		{20, BandLow},
		{39.99, BandLow},
		{40, BandMedium},
		{59.99, BandMedium},
		{60, BandHigh},
		{79.99, BandHigh},
		{80, BandCritical},
		{100, BandCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bandOf(tt.score), "score %.2f", tt.score)
	}
}

func TestAnalyze_ReviewIntervalShortensWithSeverity(t *testing.T) {
	quiet := Analyze(Input{DaysSinceLastMove: -1}, assessTime)
	busy := Analyze(Input{TransitionCount: 3, DaysSinceLastMove: 10, IncidentCount: 4, EscalationCount: 2}, assessTime)

	require.True(t, busy.Band.WorseThan(quiet.Band))
	assert.True(t, busy.NextReview.Before(quiet.NextReview))
}

func TestAnalyze_Deterministic(t *testing.T) {
	in := Input{TransitionCount: 1, DaysSinceLastMove: 30, IncidentCount: 2, MissedVisits: 1}
	first := Analyze(in, assessTime)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Analyze(in, assessTime))
	}
}
