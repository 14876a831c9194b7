package missing

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"careflow/internal/alerts"
	"careflow/internal/missing/metrics"
	"careflow/internal/placement"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
	"careflow/pkg/platform/sentinel"
	"careflow/pkg/requestcontext"
)

// PlacementReader resolves the placement a report refers to. Implemented by
// the placement service.
type PlacementReader interface {
	Find(ctx context.Context, placementID id.PlacementID) (placement.Placement, error)
}

// Service owns the missing-episode lifecycle. Reporting runs inside the
// transactional boundary because it carries the one-open-episode invariant;
// return and closure are plain single-record transitions.
type Service struct {
	store      Store
	tx         StoreTx
	placements PlacementReader
	publisher  alerts.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewService(store Store, tx StoreTx, placements PlacementReader, publisher alerts.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, tx: tx, placements: placements, publisher: publisher, logger: logger, metrics: m}
}

// ReportParams describes a missing report as taken from the referrer.
type ReportParams struct {
	PlacementID       id.PlacementID
	LastKnownLocation string
	PoliceNotified    bool
	Triggers          []Trigger
}

// ReturnParams records where and in what condition the child was found.
type ReturnParams struct {
	EpisodeID id.EpisodeID
	Location  string
	Condition string
}

// ReportMissing opens an episode for an active placement. The check for an
// existing open episode and the write happen inside one transaction keyed by
// the placement, so two concurrent reports cannot both succeed. The episode
// lands in ACTIVE straight away; REPORTED is passed through, never held.
// Alerts go to the social-worker, police-liaison, and duty-team queues.
func (s *Service) ReportMissing(ctx context.Context, params ReportParams) (Episode, error) {
	for _, t := range params.Triggers {
		if !validTriggers[t] {
			return Episode{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown missing-episode trigger %q", t)
		}
	}

	p, err := s.placements.Find(ctx, params.PlacementID)
	if err != nil {
		return Episode{}, err
	}
	if p.Status != placement.StatusActive {
		return Episode{}, dErrors.Newf(dErrors.CodeInvalidState,
			"cannot report missing for %s placement %s", p.Status, p.ID)
	}

	now := requestcontext.Now(ctx)
	var episode Episode
	err = s.tx.RunInTx(ctx, params.PlacementID.String(), func(store Store) error {
		if open, err := store.FindOpenByPlacement(ctx, params.PlacementID); err == nil {
			return dErrors.Newf(dErrors.CodeConflict,
				"placement %s already has open missing episode %s", params.PlacementID, open.ID)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check open episode")
		}

		state, err := Transition(StateNone, StateReported)
		if err != nil {
			return err
		}
		state, err = Transition(state, StateActive)
		if err != nil {
			return err
		}

		episode = Episode{
			ID:                id.NewEpisodeID(),
			ChildID:           p.ChildID,
			PlacementID:       params.PlacementID,
			State:             state,
			ReportedAt:        now,
			LastKnownLocation: params.LastKnownLocation,
			PoliceNotified:    params.PoliceNotified,
			RiskLevel:         riskLevel(params.Triggers),
			Triggers:          params.Triggers,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := store.Save(ctx, episode); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save episode")
		}
		return nil
	})
	if err != nil {
		return Episode{}, err
	}

	detail := map[string]string{
		"episode_id":      episode.ID.String(),
		"risk_level":      string(episode.RiskLevel),
		"police_notified": strconv.FormatBool(episode.PoliceNotified),
	}
	if actor := requestcontext.ActorID(ctx); actor != "" {
		detail["reported_by"] = actor
	}

	s.metrics.IncrementReported(string(episode.RiskLevel))
	s.publish(ctx, alerts.Alert{
		Kind:        alerts.KindMissingReported,
		OccurredAt:  now,
		ChildID:     episode.ChildID,
		PlacementID: episode.PlacementID,
		Audiences:   []alerts.Audience{alerts.AudienceSocialWorker, alerts.AudiencePoliceLiaison, alerts.AudienceDutyTeam},
		Message:     "child reported missing from placement",
		Detail:      detail,
		RequestID:   requestcontext.RequestID(ctx),
	})

	s.logger.InfoContext(ctx, "missing episode opened",
		"episode_id", episode.ID.String(),
		"placement_id", episode.PlacementID.String(),
		"risk_level", string(episode.RiskLevel),
	)
	return episode, nil
}

// MarkReturned transitions ACTIVE -> RETURNED, records where and how the
// child was found, and raises the independent-return-interview obligation for
// case management. The interview is a follow-up duty, not a further state of
// this machine.
func (s *Service) MarkReturned(ctx context.Context, params ReturnParams) (Episode, error) {
	e, err := s.Find(ctx, params.EpisodeID)
	if err != nil {
		return Episode{}, err
	}

	next, err := Transition(e.State, StateReturned)
	if err != nil {
		return Episode{}, err
	}

	now := requestcontext.Now(ctx)
	e.State = next
	e.ReturnedAt = &now
	e.ReturnLocation = params.Location
	e.ReturnCondition = params.Condition
	e.ReturnInterviewDue = true
	e.UpdatedAt = now
	if err := s.store.Update(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrStaleVersion) {
			return Episode{}, dErrors.Newf(dErrors.CodeConflict,
				"episode %s was modified concurrently", e.ID)
		}
		return Episode{}, dErrors.Wrap(err, dErrors.CodeInternal, "update episode")
	}
	e.Version++

	s.metrics.ObserveReturn(now.Sub(e.ReportedAt))
	s.publish(ctx, alerts.Alert{
		Kind:        alerts.KindMissingReturned,
		OccurredAt:  now,
		ChildID:     e.ChildID,
		PlacementID: e.PlacementID,
		Audiences:   []alerts.Audience{alerts.AudienceSocialWorker, alerts.AudienceDutyTeam},
		Message:     "child returned; independent return interview required",
		Detail: map[string]string{
			"episode_id": e.ID.String(),
			"risk_level": string(e.RiskLevel),
		},
		RequestID: requestcontext.RequestID(ctx),
	})

	s.logger.InfoContext(ctx, "missing episode returned",
		"episode_id", e.ID.String(),
		"placement_id", e.PlacementID.String(),
	)
	return e, nil
}

// Close transitions RETURNED -> CLOSED. Terminal.
func (s *Service) Close(ctx context.Context, episodeID id.EpisodeID) (Episode, error) {
	e, err := s.Find(ctx, episodeID)
	if err != nil {
		return Episode{}, err
	}

	next, err := Transition(e.State, StateClosed)
	if err != nil {
		return Episode{}, err
	}

	now := requestcontext.Now(ctx)
	e.State = next
	e.ClosedAt = &now
	e.UpdatedAt = now
	if err := s.store.Update(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrStaleVersion) {
			return Episode{}, dErrors.Newf(dErrors.CodeConflict,
				"episode %s was modified concurrently", e.ID)
		}
		return Episode{}, dErrors.Wrap(err, dErrors.CodeInternal, "update episode")
	}
	e.Version++

	s.logger.InfoContext(ctx, "missing episode closed", "episode_id", e.ID.String())
	return e, nil
}

// Find loads an episode.
func (s *Service) Find(ctx context.Context, episodeID id.EpisodeID) (Episode, error) {
	e, err := s.store.Find(ctx, episodeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Episode{}, dErrors.Newf(dErrors.CodeNotFound, "episode %s not found", episodeID)
		}
		return Episode{}, dErrors.Wrap(err, dErrors.CodeInternal, "find episode")
	}
	return e, nil
}

// OpenEpisode returns the placement's open episode, if any. Lets callers
// address "the" current episode by placement without knowing its ID.
func (s *Service) OpenEpisode(ctx context.Context, placementID id.PlacementID) (Episode, error) {
	e, err := s.store.FindOpenByPlacement(ctx, placementID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Episode{}, dErrors.Newf(dErrors.CodeNotFound,
				"no open missing episode for placement %s", placementID)
		}
		return Episode{}, dErrors.Wrap(err, dErrors.CodeInternal, "find open episode")
	}
	return e, nil
}

// History lists all episodes for a placement, oldest first.
func (s *Service) History(ctx context.Context, placementID id.PlacementID) ([]Episode, error) {
	episodes, err := s.store.ListByPlacement(ctx, placementID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list episodes")
	}
	return episodes, nil
}

func (s *Service) publish(ctx context.Context, alert alerts.Alert) {
	if err := s.publisher.Publish(ctx, alert); err != nil {
		s.logger.WarnContext(ctx, "alert publish failed",
			"kind", string(alert.Kind),
			"error", err.Error(),
		)
	}
}
