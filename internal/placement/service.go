package placement

import (
	"context"
	"errors"
	"log/slog"

	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
	"careflow/pkg/platform/sentinel"
	"careflow/pkg/requestcontext"
)

// Service owns the placement lifecycle. Activation runs inside the
// transactional boundary because it carries the one-active-placement-per-child
// invariant; the remaining operations are plain single-record updates.
type Service struct {
	store  Store
	tx     StoreTx
	logger *slog.Logger
}

func NewService(store Store, tx StoreTx, logger *slog.Logger) *Service {
	return &Service{store: store, tx: tx, logger: logger}
}

// Propose records a candidate placement in PROPOSED state. No invariant is
// at stake yet; any number of proposals may coexist.
func (s *Service) Propose(ctx context.Context, childID id.ChildID, providerID id.ProviderID, ptype Type) (Placement, error) {
	now := requestcontext.Now(ctx)
	p := Placement{
		ID:         id.NewPlacementID(),
		ChildID:    childID,
		ProviderID: providerID,
		Type:       ptype,
		Status:     StatusProposed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, p); err != nil {
		return Placement{}, dErrors.Wrap(err, dErrors.CodeInternal, "save placement")
	}
	s.logger.InfoContext(ctx, "placement proposed",
		"placement_id", p.ID.String(),
		"child_id", childID.String(),
		"type", ptype.String(),
	)
	return p, nil
}

// Find loads a placement.
func (s *Service) Find(ctx context.Context, placementID id.PlacementID) (Placement, error) {
	p, err := s.store.Find(ctx, placementID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Placement{}, dErrors.Newf(dErrors.CodeNotFound, "placement %s not found", placementID)
		}
		return Placement{}, dErrors.Wrap(err, dErrors.CodeInternal, "find placement")
	}
	return p, nil
}

// Activate transitions PROPOSED -> ACTIVE. The check for an existing active
// placement and the write happen inside one transaction keyed by the child,
// so two concurrent activations cannot both succeed.
func (s *Service) Activate(ctx context.Context, placementID id.PlacementID) (Placement, error) {
	p, err := s.Find(ctx, placementID)
	if err != nil {
		return Placement{}, err
	}

	var activated Placement
	err = s.tx.RunInTx(ctx, p.ChildID.String(), func(store Store) error {
		// Re-read inside the boundary; the record may have moved since.
		current, err := store.Find(ctx, placementID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "find placement")
		}

		if existing, err := store.FindActiveByChild(ctx, current.ChildID); err == nil {
			return dErrors.Newf(dErrors.CodeConflict,
				"child %s already has active placement %s", current.ChildID, existing.ID)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "check active placement")
		}

		next, err := Transition(current.Status, StatusActive)
		if err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		current.Status = next
		current.StartDate = &now
		current.UpdatedAt = now
		if err := store.Update(ctx, current); err != nil {
			if errors.Is(err, sentinel.ErrStaleVersion) {
				return dErrors.Newf(dErrors.CodeConflict,
					"placement %s was modified concurrently", placementID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "update placement")
		}
		current.Version++
		activated = current
		return nil
	})
	if err != nil {
		return Placement{}, err
	}

	s.logger.InfoContext(ctx, "placement activated",
		"placement_id", activated.ID.String(),
		"child_id", activated.ChildID.String(),
	)
	return activated, nil
}

// End transitions ACTIVE (or an unused PROPOSED) -> ENDED.
func (s *Service) End(ctx context.Context, placementID id.PlacementID) (Placement, error) {
	p, err := s.Find(ctx, placementID)
	if err != nil {
		return Placement{}, err
	}

	next, err := Transition(p.Status, StatusEnded)
	if err != nil {
		return Placement{}, err
	}

	now := requestcontext.Now(ctx)
	p.Status = next
	p.EndDate = &now
	p.UpdatedAt = now
	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrStaleVersion) {
			return Placement{}, dErrors.Newf(dErrors.CodeConflict,
				"placement %s was modified concurrently", placementID)
		}
		return Placement{}, dErrors.Wrap(err, dErrors.CodeInternal, "update placement")
	}
	p.Version++

	s.logger.InfoContext(ctx, "placement ended", "placement_id", p.ID.String())
	return p, nil
}

// History lists all placements for a child, oldest first. The risk analyzer
// consumes this as the transition history.
func (s *Service) History(ctx context.Context, childID id.ChildID) ([]Placement, error) {
	placements, err := s.store.ListByChild(ctx, childID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list placements")
	}
	return placements, nil
}
