// Package placement manages the assignment of a child to a care setting and
// its proposed/active/ended lifecycle.
//
// The status field is an explicit finite-state machine: every mutation goes
// through Transition, which rejects anything not in the transition table.
package placement

import (
	"time"

	dErrors "careflow/pkg/domain-errors"
	id "careflow/pkg/domain"
)

// Type is the kind of care setting.
type Type string

const (
	TypeFoster            Type = "FOSTER"
	TypeResidential       Type = "RESIDENTIAL"
	TypeKinship           Type = "KINSHIP"
	TypeEmergency         Type = "EMERGENCY"
	TypeRespite           Type = "RESPITE"
	TypeSupportedLodgings Type = "SUPPORTED_LODGINGS"
)

var validTypes = map[Type]bool{
	TypeFoster:            true,
	TypeResidential:       true,
	TypeKinship:           true,
	TypeEmergency:         true,
	TypeRespite:           true,
	TypeSupportedLodgings: true,
}

// ParseType constructs a placement Type from external input.
func ParseType(s string) (Type, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "placement type cannot be empty")
	}
	t := Type(s)
	if !validTypes[t] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown placement type %q", s)
	}
	return t, nil
}

func (t Type) String() string { return string(t) }

// IsValid reports whether t is a known care setting.
func (t Type) IsValid() bool { return validTypes[t] }

// Status is the placement lifecycle state.
type Status string

const (
	StatusProposed Status = "PROPOSED"
	StatusActive   Status = "ACTIVE"
	StatusEnded    Status = "ENDED"
)

// transitions is the full transition table. Anything absent is illegal.
var transitions = map[Status]map[Status]bool{
	StatusProposed: {StatusActive: true, StatusEnded: true},
	StatusActive:   {StatusEnded: true},
	StatusEnded:    {},
}

// Transition validates a status change and returns the new status. Illegal
// transitions fail with CodeInvalidState naming both states; the state
// machine never silently no-ops.
func Transition(current, next Status) (Status, error) {
	allowed, ok := transitions[current]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "unknown placement status %s", current)
	}
	if !allowed[next] {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "cannot transition placement from %s to %s", current, next)
	}
	return next, nil
}

// Placement assigns a child to a provider's care setting.
//
// Invariant: at most one placement per child is ACTIVE at any time. The
// service enforces this inside a transactional boundary; Version backs the
// optimistic-concurrency check in the postgres store.
type Placement struct {
	ID         id.PlacementID
	ChildID    id.ChildID
	ProviderID id.ProviderID
	Type       Type
	Status     Status
	StartDate  *time.Time
	EndDate    *time.Time
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
