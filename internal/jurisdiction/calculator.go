package jurisdiction

import (
	"time"

	dErrors "careflow/pkg/domain-errors"
)

// IsLegalStatusValid reports whether the status is in the jurisdiction's
// allow-list. Unknown jurisdictions report false; use ValidateStatus when an
// error naming both values is needed.
func IsLegalStatusValid(j Jurisdiction, status LegalStatus) bool {
	rs, ok := ruleTable[j]
	if !ok {
		return false
	}
	return rs.AllowedStatuses[status]
}

// ValidateStatus rejects (jurisdiction, legalStatus) pairs that are not in
// the rule table. The error names both values so the caller can surface them
// without re-deriving context. Callers must reject the whole operation on
// error, never fall back to a default status.
func ValidateStatus(j Jurisdiction, status LegalStatus) error {
	rs, ok := ruleTable[j]
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "unknown jurisdiction %s", j)
	}
	if !allLegalStatuses[status] {
		return dErrors.Newf(dErrors.CodeValidation, "unknown legal status %s", status)
	}
	if !rs.AllowedStatuses[status] {
		return dErrors.Newf(dErrors.CodeValidation, "%s not valid for %s", status, j)
	}
	return nil
}

// CarePlanTerminology returns the jurisdiction-specific label for the child's
// plan document. Data-only; the presentation layer decides how to use it.
func CarePlanTerminology(j Jurisdiction) (string, error) {
	rs, ok := ruleTable[j]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown jurisdiction %s", j)
	}
	return rs.CarePlanLabel, nil
}

// apply shifts a reference date by a calendar offset. Months first so a
// "3 months" statutory interval lands on the same day-of-month where the
// calendar allows, matching how review dates are set in practice.
func (o Offset) apply(from time.Time) time.Time {
	return from.AddDate(0, o.Months, o.Days)
}

// NextStatutoryReviewDate computes the due date of review number seq
// (1-based) counted from the given reference date: the admission date for the
// first review, the previous review date thereafter.
func NextStatutoryReviewDate(j Jurisdiction, from time.Time, seq int) (time.Time, error) {
	rs, ok := ruleTable[j]
	if !ok {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "unknown jurisdiction %s", j)
	}
	if seq < 1 {
		return time.Time{}, dErrors.Newf(dErrors.CodeInvalidInput, "review sequence number must be >= 1, got %d", seq)
	}
	switch seq {
	case 1:
		return rs.Reviews.First.apply(from), nil
	case 2:
		return rs.Reviews.Second.apply(from), nil
	default:
		return rs.Reviews.Subsequent.apply(from), nil
	}
}

// HealthAssessmentDueDate computes when the next statutory health assessment
// is due, counted from the reference date.
func HealthAssessmentDueDate(j Jurisdiction, from time.Time) (time.Time, error) {
	rs, ok := ruleTable[j]
	if !ok {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "unknown jurisdiction %s", j)
	}
	return rs.HealthAssessment.apply(from), nil
}

// EducationPlanDueDate computes when the education-plan review is due,
// counted from the reference date.
func EducationPlanDueDate(j Jurisdiction, from time.Time) (time.Time, error) {
	rs, ok := ruleTable[j]
	if !ok {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "unknown jurisdiction %s", j)
	}
	return rs.EducationPlan.apply(from), nil
}

// Deadlines groups the three statutory due dates computed from one reference
// date. Child intake and cross-border transfer both replace the full set at
// once so a child never carries a mixed schedule.
type Deadlines struct {
	NextReview           time.Time
	NextHealthAssessment time.Time
	NextEducationPlan    time.Time
}

// ComputeDeadlines derives the full deadline set for a jurisdiction from one
// reference date, using review sequence 1. Used on intake and on cross-border
// transfer, where the prior jurisdiction's schedule is discarded.
func ComputeDeadlines(j Jurisdiction, from time.Time) (Deadlines, error) {
	review, err := NextStatutoryReviewDate(j, from, 1)
	if err != nil {
		return Deadlines{}, err
	}
	health, err := HealthAssessmentDueDate(j, from)
	if err != nil {
		return Deadlines{}, err
	}
	education, err := EducationPlanDueDate(j, from)
	if err != nil {
		return Deadlines{}, err
	}
	return Deadlines{
		NextReview:           review,
		NextHealthAssessment: health,
		NextEducationPlan:    education,
	}, nil
}
