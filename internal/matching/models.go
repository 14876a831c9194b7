// Package matching scores and ranks candidate placement providers for a
// child. The scoring function is pure and deterministic: identical inputs
// produce identical ordering, which caseworkers rely on when re-running a
// search during review.
package matching

import (
	"careflow/internal/jurisdiction"
	"careflow/internal/placement"
	id "careflow/pkg/domain"
)

// Urgency selects the weighting profile. Immediate requests (emergency,
// respite) favour availability over proximity and continuity; it is a
// parameter to the same algorithm, not a separate code path.
type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyImmediate Urgency = "immediate"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Provider is one entry of the candidate pool supplied by the external
// provider-directory collaborator. Compliance flags arrive pre-checked; the
// engine only gates on them.
type Provider struct {
	ID                   id.ProviderID
	Name                 string
	Location             Location
	Vacancies            int
	Capacity             int
	Types                []placement.Type
	RegistrationValid    bool
	DBSValid             bool
	CulturalCapabilities []string
	AcceptsSiblingGroups bool
}

// Supports reports whether the provider offers the requested care setting.
func (p Provider) Supports(t placement.Type) bool {
	for _, supported := range p.Types {
		if supported == t {
			return true
		}
	}
	return false
}

// Profile is the child's matching-relevant view. The (jurisdiction, legal
// status) pair must have been validated at intake; FindMatches re-checks it
// and propagates the validation error rather than scoring on bad data.
type Profile struct {
	ChildID        id.ChildID
	Jurisdiction   jurisdiction.Jurisdiction
	LegalStatus    jurisdiction.LegalStatus
	HomeLocation   Location
	SchoolLocation *Location
	CulturalNeeds  []string
	SiblingCount   int
}

// Preferences tune one matching request. Zero value means standard urgency
// with the default weight set.
type Preferences struct {
	Urgency Urgency
	// Weights overrides the default parameter set when non-nil. Values are
	// relative shares; FindMatches normalizes them to sum to 1.
	Weights *Weights
}

// SubScores carries the per-dimension normalized scores so a ranked result
// is explainable, not a black-box number.
type SubScores struct {
	Proximity    float64 `json:"proximity"`
	Continuity   float64 `json:"continuity"`
	Culture      float64 `json:"culture"`
	Availability float64 `json:"availability"`
}

// Candidate is one scored pool entry. Transient: computed per request,
// never persisted.
type Candidate struct {
	ProviderID id.ProviderID
	Name       string
	Score      float64
	SubScores  SubScores
	DistanceKm float64
	// RiskScore is the provider's current breakdown-risk score, carried for
	// the tie-break and for caseworker context.
	RiskScore float64
}
