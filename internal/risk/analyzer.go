package risk

import (
	"math"
	"time"
)

// Factor weights. The set is versioned so stored assessments can be traced
// back to the parameter set that produced them; weights sum to 1.0.
//
// The original system documents only illustrative outputs, so these defaults
// were chosen to keep placement instability (moves + recency) the dominant
// signal, with incident volume close behind.
const WeightsVersion = "2025-08"

var defaultWeights = map[FactorKind]float64{
	FactorPlacementMoves: 0.30,
	FactorMoveRecency:    0.15,
	FactorIncidents:      0.25,
	FactorMissedVisits:   0.15,
	FactorEscalations:    0.15,
}

// Banding thresholds over the [0,100] aggregate. Fixed constants by design.
const (
	thresholdLow      = 20
	thresholdMedium   = 40
	thresholdHigh     = 60
	thresholdCritical = 80
)

// Review intervals per band. The worse the band, the sooner the next look.
var reviewIntervals = map[Band]time.Duration{
	BandMinimal:  90 * 24 * time.Hour,
	BandLow:      28 * 24 * time.Hour,
	BandMedium:   14 * 24 * time.Hour,
	BandHigh:     7 * 24 * time.Hour,
	BandCritical: 2 * 24 * time.Hour,
}

// moveRecencyWindowDays is the span over which a recent move still raises the
// recency score; moves older than this contribute nothing.
const moveRecencyWindowDays = 180

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Outcome is the pure analyzer result before persistence concerns.
type Outcome struct {
	Factors    []Factor
	Score      float64
	Band       Band
	NextReview time.Time
}

// Analyze computes the weighted aggregate score, band, and next-review date
// for one placement's history. Pure and deterministic: now is the reference
// time supplied by the caller.
func Analyze(input Input, now time.Time) Outcome {
	factors := []Factor{
		normalize(FactorPlacementMoves, float64(input.TransitionCount), float64(input.TransitionCount)*20),
		recencyFactor(input.DaysSinceLastMove),
		normalize(FactorIncidents, float64(input.IncidentCount), float64(input.IncidentCount)*15),
		normalize(FactorMissedVisits, float64(input.MissedVisits), float64(input.MissedVisits)*25),
		normalize(FactorEscalations, float64(input.EscalationCount), float64(input.EscalationCount)*20),
	}

	var score float64
	for _, f := range factors {
		score += f.Score * f.Weight
	}
	score = math.Round(score*100) / 100

	band := bandOf(score)
	return Outcome{
		Factors:    factors,
		Score:      score,
		Band:       band,
		NextReview: now.Add(reviewIntervals[band]),
	}
}

func normalize(kind FactorKind, raw, score float64) Factor {
	return Factor{
		Kind:   kind,
		Raw:    raw,
		Score:  clamp(score),
		Weight: defaultWeights[kind],
	}
}

// recencyFactor scores how fresh the latest move is: a move today scores 100,
// decaying linearly to 0 at the window edge. No recorded move scores 0.
func recencyFactor(daysSinceLastMove int) Factor {
	raw := float64(daysSinceLastMove)
	var score float64
	if daysSinceLastMove >= 0 {
		score = clamp(100 - raw*(100.0/moveRecencyWindowDays))
	}
	return Factor{
		Kind:   FactorMoveRecency,
		Raw:    raw,
		Score:  score,
		Weight: defaultWeights[FactorMoveRecency],
	}
}

func bandOf(score float64) Band {
	switch {
	case score < thresholdLow:
		return BandMinimal
	case score < thresholdMedium:
		return BandLow
	case score < thresholdHigh:
		return BandMedium
	case score < thresholdCritical:
		return BandHigh
	default:
		return BandCritical
	}
}
