// Package child manages looked-after child records: intake, legal status
// changes, and cross-border jurisdiction transfers. All statutory rules are
// delegated to the jurisdiction package; this package owns orchestration and
// the record's lifecycle.
package child

import (
	"time"

	"careflow/internal/jurisdiction"
	id "careflow/pkg/domain"
)

// Child is a looked-after child record. The deadline fields are derived data,
// recomputed whenever the jurisdiction or the reference date changes; they
// are never edited directly.
//
// Invariant: LegalStatus is always in the allow-list for Jurisdiction. The
// service enforces this at intake and on every update; a violating
// combination is rejected, never coerced.
type Child struct {
	ID            id.ChildID
	Jurisdiction  jurisdiction.Jurisdiction
	LegalStatus   jurisdiction.LegalStatus
	AdmissionDate time.Time
	Deadlines     jurisdiction.Deadlines
	ReviewsHeld   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IntakeParams carries the validated inputs for creating a child record.
type IntakeParams struct {
	Jurisdiction  jurisdiction.Jurisdiction
	LegalStatus   jurisdiction.LegalStatus
	AdmissionDate time.Time
}
