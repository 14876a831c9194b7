// Package risk estimates placement-breakdown risk from historical signals.
//
// The analyzer is pure: it consumes counts and recency values supplied by the
// caller and produces an explainable weighted assessment. Output is advisory
// only; nothing in this package creates or terminates placements.
package risk

import (
	"time"

	id "careflow/pkg/domain"
)

// Band is the risk category derived from the aggregate score. Thresholds are
// fixed constants, not per-call configuration, so scores stay comparable
// across cases.
type Band string

const (
	BandMinimal  Band = "MINIMAL"
	BandLow      Band = "LOW"
	BandMedium   Band = "MEDIUM"
	BandHigh     Band = "HIGH"
	BandCritical Band = "CRITICAL"
)

// bandRank orders bands for escalation comparison.
var bandRank = map[Band]int{
	BandMinimal:  0,
	BandLow:      1,
	BandMedium:   2,
	BandHigh:     3,
	BandCritical: 4,
}

// WorseThan reports whether b is a more severe band than other.
func (b Band) WorseThan(other Band) bool {
	return bandRank[b] > bandRank[other]
}

// FactorKind names a contributing risk signal.
type FactorKind string

const (
	FactorPlacementMoves FactorKind = "placement_moves"
	FactorMoveRecency    FactorKind = "move_recency"
	FactorIncidents      FactorKind = "incidents"
	FactorMissedVisits   FactorKind = "missed_visits"
	FactorEscalations    FactorKind = "escalations"
)

// Factor is one weighted signal in an assessment. Raw is the unnormalized
// observation, Score its [0,100] normalization, Weight its share of the
// aggregate. All three are kept so caseworkers can see why a score moved.
type Factor struct {
	Kind   FactorKind `json:"kind"`
	Raw    float64    `json:"raw"`
	Score  float64    `json:"score"`
	Weight float64    `json:"weight"`
}

// Input carries the historical signals for one placement.
type Input struct {
	// TransitionCount is how many placement moves the child has had in the
	// lookback window (ended placements, not the current one).
	TransitionCount int
	// DaysSinceLastMove is the age of the most recent move; negative means
	// no move has ever happened.
	DaysSinceLastMove int
	// IncidentCount counts safeguarding/incident reports for the placement.
	IncidentCount int
	// MissedVisits and EscalationCount are the carer-stress indicators.
	MissedVisits    int
	EscalationCount int
}

// Assessment is the persisted outcome of one risk computation. Later
// assessments supersede earlier ones; history is preserved, never deleted.
type Assessment struct {
	ID          id.AssessmentID
	ChildID     id.ChildID
	PlacementID id.PlacementID
	ProviderID  id.ProviderID
	Factors     []Factor
	Score       float64
	Band        Band
	NextReview  time.Time
	CreatedAt   time.Time
	Superseded  bool
}
