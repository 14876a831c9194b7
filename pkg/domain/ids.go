// Package domain holds the shared kernel for the care engine: typed
// identifiers used across bounded contexts.
//
// IDs are distinct types over uuid.UUID so a PlacementID can never be passed
// where a ChildID is expected. Construct via NewXxxID for fresh records and
// ParseXxxID at trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "careflow/pkg/domain-errors"
)

// Typed identifiers for the engine's entities.
type (
	ChildID      uuid.UUID
	PlacementID  uuid.UUID
	ProviderID   uuid.UUID
	EpisodeID    uuid.UUID
	AssessmentID uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id %q is not a valid UUID", kind, s)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be the nil UUID", kind)
	}
	return u, nil
}

// NewChildID returns a fresh child identifier.
func NewChildID() ChildID { return ChildID(uuid.New()) }

// ParseChildID validates external input as a child identifier.
func ParseChildID(s string) (ChildID, error) {
	u, err := parseUUID("child", s)
	return ChildID(u), err
}

func (id ChildID) String() string { return uuid.UUID(id).String() }
func (id ChildID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps typed IDs travelling as UUID strings on every wire
// format; a distinct type over uuid.UUID does not inherit its marshalers.
func (id ChildID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ChildID) UnmarshalText(b []byte) error {
	parsed, err := ParseChildID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewPlacementID returns a fresh placement identifier.
func NewPlacementID() PlacementID { return PlacementID(uuid.New()) }

// ParsePlacementID validates external input as a placement identifier.
func ParsePlacementID(s string) (PlacementID, error) {
	u, err := parseUUID("placement", s)
	return PlacementID(u), err
}

func (id PlacementID) String() string { return uuid.UUID(id).String() }
func (id PlacementID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id PlacementID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *PlacementID) UnmarshalText(b []byte) error {
	parsed, err := ParsePlacementID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewProviderID returns a fresh provider identifier.
func NewProviderID() ProviderID { return ProviderID(uuid.New()) }

// ParseProviderID validates external input as a provider identifier.
func ParseProviderID(s string) (ProviderID, error) {
	u, err := parseUUID("provider", s)
	return ProviderID(u), err
}

func (id ProviderID) String() string { return uuid.UUID(id).String() }
func (id ProviderID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id ProviderID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ProviderID) UnmarshalText(b []byte) error {
	parsed, err := ParseProviderID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewEpisodeID returns a fresh missing-episode identifier.
func NewEpisodeID() EpisodeID { return EpisodeID(uuid.New()) }

// ParseEpisodeID validates external input as a missing-episode identifier.
func ParseEpisodeID(s string) (EpisodeID, error) {
	u, err := parseUUID("episode", s)
	return EpisodeID(u), err
}

func (id EpisodeID) String() string { return uuid.UUID(id).String() }
func (id EpisodeID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id EpisodeID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *EpisodeID) UnmarshalText(b []byte) error {
	parsed, err := ParseEpisodeID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewAssessmentID returns a fresh risk-assessment identifier.
func NewAssessmentID() AssessmentID { return AssessmentID(uuid.New()) }

// ParseAssessmentID validates external input as a risk-assessment identifier.
func ParseAssessmentID(s string) (AssessmentID, error) {
	u, err := parseUUID("assessment", s)
	return AssessmentID(u), err
}

func (id AssessmentID) String() string { return uuid.UUID(id).String() }
func (id AssessmentID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id AssessmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AssessmentID) UnmarshalText(b []byte) error {
	parsed, err := ParseAssessmentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
