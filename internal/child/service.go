package child

import (
	"context"
	"errors"
	"log/slog"

	"careflow/internal/alerts"
	"careflow/internal/jurisdiction"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
	"careflow/pkg/platform/sentinel"
	"careflow/pkg/requestcontext"
)

// Service orchestrates child record mutations. Statutory validation and
// deadline arithmetic live in the jurisdiction package; the service enforces
// the all-or-nothing update rule and emits advisory signals.
type Service struct {
	store     Store
	publisher alerts.Publisher
	logger    *slog.Logger
}

func NewService(store Store, publisher alerts.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Intake creates a child record. The (jurisdiction, legalStatus) pair is
// validated before anything is written and the full deadline set is computed
// from the admission date.
func (s *Service) Intake(ctx context.Context, params IntakeParams) (Child, error) {
	if err := jurisdiction.ValidateStatus(params.Jurisdiction, params.LegalStatus); err != nil {
		return Child{}, err
	}
	if params.AdmissionDate.IsZero() {
		return Child{}, dErrors.New(dErrors.CodeInvalidInput, "admission date is required")
	}

	deadlines, err := jurisdiction.ComputeDeadlines(params.Jurisdiction, params.AdmissionDate)
	if err != nil {
		return Child{}, err
	}

	now := requestcontext.Now(ctx)
	c := Child{
		ID:            id.NewChildID(),
		Jurisdiction:  params.Jurisdiction,
		LegalStatus:   params.LegalStatus,
		AdmissionDate: params.AdmissionDate,
		Deadlines:     deadlines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Save(ctx, c); err != nil {
		return Child{}, dErrors.Wrap(err, dErrors.CodeInternal, "save child record")
	}

	s.logger.InfoContext(ctx, "child admitted",
		"child_id", c.ID.String(),
		"jurisdiction", c.Jurisdiction.String(),
		"legal_status", c.LegalStatus.String(),
	)
	return c, nil
}

// Find loads a child record.
func (s *Service) Find(ctx context.Context, childID id.ChildID) (Child, error) {
	c, err := s.store.Find(ctx, childID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Child{}, dErrors.Newf(dErrors.CodeNotFound, "child %s not found", childID)
		}
		return Child{}, dErrors.Wrap(err, dErrors.CodeInternal, "find child record")
	}
	return c, nil
}

// ChangeLegalStatus replaces the child's legal status after re-validating it
// against the current jurisdiction. Deadlines are untouched: a status change
// within a jurisdiction does not reset the statutory schedule.
func (s *Service) ChangeLegalStatus(ctx context.Context, childID id.ChildID, status jurisdiction.LegalStatus) (Child, error) {
	c, err := s.Find(ctx, childID)
	if err != nil {
		return Child{}, err
	}
	if err := jurisdiction.ValidateStatus(c.Jurisdiction, status); err != nil {
		return Child{}, err
	}

	c.LegalStatus = status
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, c); err != nil {
		return Child{}, dErrors.Wrap(err, dErrors.CodeInternal, "update child record")
	}

	s.logger.InfoContext(ctx, "legal status changed",
		"child_id", c.ID.String(),
		"legal_status", status.String(),
	)
	return c, nil
}

// TransferJurisdiction moves a child to another territory. The current legal
// status must be valid under the destination's allow-list or the whole update
// fails; on success all three deadline types are recomputed from the transfer
// date, discarding the prior jurisdiction's schedule. A cross-border advisory
// is emitted for the notification collaborator; publish failure is logged and
// never fails the transfer.
func (s *Service) TransferJurisdiction(ctx context.Context, childID id.ChildID, dest jurisdiction.Jurisdiction) (Child, error) {
	c, err := s.Find(ctx, childID)
	if err != nil {
		return Child{}, err
	}
	if err := jurisdiction.ValidateStatus(dest, c.LegalStatus); err != nil {
		return Child{}, err
	}

	transferDate := requestcontext.Now(ctx)
	deadlines, err := jurisdiction.ComputeDeadlines(dest, transferDate)
	if err != nil {
		return Child{}, err
	}

	origin := c.Jurisdiction
	c.Jurisdiction = dest
	c.Deadlines = deadlines
	c.ReviewsHeld = 0
	c.UpdatedAt = transferDate
	if err := s.store.Update(ctx, c); err != nil {
		return Child{}, dErrors.Wrap(err, dErrors.CodeInternal, "update child record")
	}

	if err := s.publisher.Publish(ctx, alerts.Alert{
		Kind:       alerts.KindCrossBorderTransfer,
		OccurredAt: transferDate,
		ChildID:    c.ID,
		Audiences:  []alerts.Audience{alerts.AudienceSocialWorker, alerts.AudiencePlacementTeam},
		Message:    "cross-border placement requires authorization",
		Detail: map[string]string{
			"from_jurisdiction": origin.String(),
			"to_jurisdiction":   dest.String(),
			"legal_status":      c.LegalStatus.String(),
		},
		RequestID: requestcontext.RequestID(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "cross-border advisory publish failed",
			"child_id", c.ID.String(),
			"error", err.Error(),
		)
	}

	s.logger.InfoContext(ctx, "jurisdiction transferred",
		"child_id", c.ID.String(),
		"from", origin.String(),
		"to", dest.String(),
	)
	return c, nil
}

// RecordReviewHeld advances the review counter and computes the next review
// due date from the held-review date using the jurisdiction's schedule.
func (s *Service) RecordReviewHeld(ctx context.Context, childID id.ChildID) (Child, error) {
	c, err := s.Find(ctx, childID)
	if err != nil {
		return Child{}, err
	}

	heldAt := requestcontext.Now(ctx)
	next, err := jurisdiction.NextStatutoryReviewDate(c.Jurisdiction, heldAt, c.ReviewsHeld+2)
	if err != nil {
		return Child{}, err
	}

	c.ReviewsHeld++
	c.Deadlines.NextReview = next
	c.UpdatedAt = heldAt
	if err := s.store.Update(ctx, c); err != nil {
		return Child{}, dErrors.Wrap(err, dErrors.CodeInternal, "update child record")
	}
	return c, nil
}
