// Package missing tracks a placement's missing-from-care lifecycle: report,
// active episode, return, and closure.
//
// The state field is an explicit finite-state machine: every mutation goes
// through Transition, which rejects anything not in the transition table.
package missing

import (
	"time"

	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
)

// State is the episode lifecycle state. NONE is implicit: a placement with no
// open episode has no episode row at all.
type State string

const (
	StateNone     State = "NONE"
	StateReported State = "REPORTED"
	StateActive   State = "ACTIVE"
	StateReturned State = "RETURNED"
	StateClosed   State = "CLOSED"
)

// transitions is the full transition table. Anything absent is illegal.
// Reporting moves straight through REPORTED to ACTIVE; there is no
// intermediate hold while the report is triaged.
var transitions = map[State]map[State]bool{
	StateNone:     {StateReported: true},
	StateReported: {StateActive: true},
	StateActive:   {StateReturned: true},
	StateReturned: {StateClosed: true},
	StateClosed:   {},
}

// Transition validates a state change and returns the new state. Illegal
// transitions fail with CodeInvalidState naming both states; the state
// machine never silently no-ops.
func Transition(current, next State) (State, error) {
	allowed, ok := transitions[current]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "unknown episode state %s", current)
	}
	if !allowed[next] {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "cannot transition episode from %s to %s", current, next)
	}
	return next, nil
}

// open reports whether the state counts against the one-open-episode
// invariant.
func (s State) open() bool {
	return s == StateReported || s == StateActive
}

// RiskLevel grades an open episode for response prioritization. Derived from
// the trigger factors at report time, not updated afterwards.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Trigger is one of the enumerated circumstances known at report time that
// feed the episode risk level.
type Trigger string

const (
	TriggerExploitationConcern Trigger = "EXPLOITATION_CONCERN"
	TriggerPriorEpisodes       Trigger = "PRIOR_EPISODES"
	TriggerSubstanceMisuse     Trigger = "SUBSTANCE_MISUSE"
	TriggerUnderTwelve         Trigger = "UNDER_TWELVE"
	TriggerOvernight           Trigger = "OVERNIGHT"
)

var validTriggers = map[Trigger]bool{
	TriggerExploitationConcern: true,
	TriggerPriorEpisodes:       true,
	TriggerSubstanceMisuse:     true,
	TriggerUnderTwelve:         true,
	TriggerOvernight:           true,
}

// ParseTrigger constructs a Trigger from external input.
func ParseTrigger(s string) (Trigger, error) {
	t := Trigger(s)
	if !validTriggers[t] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown missing-episode trigger %q", s)
	}
	return t, nil
}

// riskLevel grades the episode from its triggers. Exploitation concern and
// under-twelve are individually sufficient for HIGH; otherwise the count of
// triggers decides.
func riskLevel(triggers []Trigger) RiskLevel {
	for _, t := range triggers {
		if t == TriggerExploitationConcern || t == TriggerUnderTwelve {
			return RiskHigh
		}
	}
	switch {
	case len(triggers) >= 3:
		return RiskHigh
	case len(triggers) >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Episode is one missing-from-care episode for a placement.
//
// Invariant: at most one episode per placement is open (REPORTED or ACTIVE)
// at any time. The service enforces this inside a transactional boundary;
// Version backs the optimistic-concurrency check in the postgres store.
type Episode struct {
	ID                 id.EpisodeID
	ChildID            id.ChildID
	PlacementID        id.PlacementID
	State              State
	ReportedAt         time.Time
	LastKnownLocation  string
	PoliceNotified     bool
	RiskLevel          RiskLevel
	Triggers           []Trigger
	ReturnedAt         *time.Time
	ReturnLocation     string
	ReturnCondition    string
	// ReturnInterviewDue flags the independent return interview obligation.
	// The interview itself is tracked by case management, not this machine.
	ReturnInterviewDue bool
	ClosedAt           *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
