package risk

import (
	"context"
	"errors"
	"log/slog"

	"careflow/internal/alerts"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
	"careflow/pkg/platform/sentinel"
	"careflow/pkg/requestcontext"
)

// Service persists analyzer outcomes, keeps the latest-assessment cache warm,
// and raises an advisory when a placement's band worsens. The analyzer itself
// stays pure; the service is the only part that touches I/O.
type Service struct {
	store     Store
	cache     Cache
	publisher alerts.Publisher
	logger    *slog.Logger
}

func NewService(store Store, cache Cache, publisher alerts.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, cache: cache, publisher: publisher, logger: logger}
}

// AssessParams identifies the placement under assessment plus the signals
// gathered by the caller (incident history comes from the external incident
// collaborator, visit data from case management).
type AssessParams struct {
	ChildID     id.ChildID
	PlacementID id.PlacementID
	ProviderID  id.ProviderID
	Input       Input
}

// Assess runs the analyzer, appends the result to the assessment history,
// refreshes the cache, and emits a risk-band escalation advisory when the
// band got worse. Cache and publish failures are logged, never propagated:
// the assessment of record is the stored one.
func (s *Service) Assess(ctx context.Context, params AssessParams) (Assessment, error) {
	if params.PlacementID.IsZero() {
		return Assessment{}, dErrors.New(dErrors.CodeInvalidInput, "placement id is required")
	}

	now := requestcontext.Now(ctx)
	outcome := Analyze(params.Input, now)

	previousBand := BandMinimal
	hadPrevious := false
	if previous, err := s.store.Latest(ctx, params.PlacementID); err == nil {
		previousBand = previous.Band
		hadPrevious = true
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Assessment{}, dErrors.Wrap(err, dErrors.CodeInternal, "load previous assessment")
	}

	a := Assessment{
		ID:          id.NewAssessmentID(),
		ChildID:     params.ChildID,
		PlacementID: params.PlacementID,
		ProviderID:  params.ProviderID,
		Factors:     outcome.Factors,
		Score:       outcome.Score,
		Band:        outcome.Band,
		NextReview:  outcome.NextReview,
		CreatedAt:   now,
	}
	if err := s.store.Append(ctx, a); err != nil {
		return Assessment{}, dErrors.Wrap(err, dErrors.CodeInternal, "append assessment")
	}

	if err := s.cache.Put(ctx, a); err != nil {
		s.logger.WarnContext(ctx, "assessment cache refresh failed",
			"placement_id", a.PlacementID.String(),
			"error", err.Error(),
		)
	}

	if hadPrevious && a.Band.WorseThan(previousBand) {
		if err := s.publisher.Publish(ctx, alerts.Alert{
			Kind:        alerts.KindRiskBandEscalated,
			OccurredAt:  now,
			ChildID:     a.ChildID,
			PlacementID: a.PlacementID,
			Audiences:   []alerts.Audience{alerts.AudienceSocialWorker, alerts.AudiencePlacementTeam},
			Message:     "placement breakdown risk band escalated",
			Detail: map[string]string{
				"from_band": string(previousBand),
				"to_band":   string(a.Band),
			},
			RequestID: requestcontext.RequestID(ctx),
		}); err != nil {
			s.logger.WarnContext(ctx, "risk escalation advisory publish failed",
				"placement_id", a.PlacementID.String(),
				"error", err.Error(),
			)
		}
	}

	s.logger.InfoContext(ctx, "risk assessed",
		"placement_id", a.PlacementID.String(),
		"score", a.Score,
		"band", string(a.Band),
	)
	return a, nil
}

// Latest returns the current assessment for a placement, preferring the
// cache.
func (s *Service) Latest(ctx context.Context, placementID id.PlacementID) (Assessment, error) {
	if cached, ok, err := s.cache.Get(ctx, placementID); err == nil && ok {
		return cached, nil
	} else if err != nil {
		s.logger.WarnContext(ctx, "assessment cache read failed",
			"placement_id", placementID.String(),
			"error", err.Error(),
		)
	}

	a, err := s.store.Latest(ctx, placementID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Assessment{}, dErrors.Newf(dErrors.CodeNotFound, "no assessment for placement %s", placementID)
		}
		return Assessment{}, dErrors.Wrap(err, dErrors.CodeInternal, "load assessment")
	}
	return a, nil
}

// History returns all assessments for a placement, oldest first.
func (s *Service) History(ctx context.Context, placementID id.PlacementID) ([]Assessment, error) {
	history, err := s.store.History(ctx, placementID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load assessment history")
	}
	return history, nil
}

// HighRisk lists current assessments in the high and critical bands, worst
// first, for the dashboard and alert review queues.
func (s *Service) HighRisk(ctx context.Context) ([]Assessment, error) {
	out, err := s.store.ListCurrentInBands(ctx, []Band{BandHigh, BandCritical})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list high risk assessments")
	}
	return out, nil
}

// ProviderRisk reports the worst current risk score across a provider's
// assessed placements. Providers with no history score zero; absence of
// evidence is not evidence of risk. Matching uses this for tie-breaking and
// deprioritization, never for hard exclusion.
func (s *Service) ProviderRisk(ctx context.Context, providerID id.ProviderID) (float64, error) {
	assessments, err := s.store.LatestByProvider(ctx, providerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "load provider assessments")
	}
	var worst float64
	for _, a := range assessments {
		if a.Score > worst {
			worst = a.Score
		}
	}
	return worst, nil
}
