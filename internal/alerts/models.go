// Package alerts defines the advisory signal contract between the care
// engine and the external notification/audit collaborator.
//
// Emission is fire-and-forget from the engine's perspective: a failed
// publish is logged, never surfaced to the caller, and never blocks the
// operation that produced the signal.
package alerts

import (
	"time"

	id "careflow/pkg/domain"
)

// Kind classifies an advisory signal.
type Kind string

const (
	// KindMissingReported fires when a missing episode is opened.
	KindMissingReported Kind = "missing_reported"

	// KindMissingReturned fires when a child is marked returned, carrying the
	// independent-return-interview obligation for case management.
	KindMissingReturned Kind = "missing_returned"

	// KindCrossBorderTransfer fires on jurisdiction transfer. Advisory only:
	// "cross-border placement requires authorization" is logged downstream,
	// not enforced here.
	KindCrossBorderTransfer Kind = "cross_border_transfer"

	// KindRiskBandEscalated fires when a recomputed assessment lands in a
	// worse band than its predecessor.
	KindRiskBandEscalated Kind = "risk_band_escalated"
)

// Audience routes a signal to a downstream team queue.
type Audience string

const (
	AudienceSocialWorker  Audience = "social_worker"
	AudiencePoliceLiaison Audience = "police_liaison"
	AudienceDutyTeam      Audience = "duty_team"
	AudiencePlacementTeam Audience = "placement_team"
)

// Alert is the transport-agnostic advisory event. Detail keys are free-form
// but must not contain raw personal data; IDs and enum names only.
type Alert struct {
	Kind        Kind              `json:"kind"`
	OccurredAt  time.Time         `json:"occurred_at"`
	ChildID     id.ChildID        `json:"child_id,omitzero"`
	PlacementID id.PlacementID    `json:"placement_id,omitzero"`
	Audiences   []Audience        `json:"audiences"`
	Message     string            `json:"message"`
	Detail      map[string]string `json:"detail,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
}
