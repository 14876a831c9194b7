// Package handler exposes placement matching over HTTP. The handler composes
// the child record, the request's profile details, and the provider
// directory's candidate pool into one matching run.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"careflow/internal/child"
	"careflow/internal/matching"
	"careflow/internal/placement"
	"careflow/internal/transport/http/shared"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
)

// Service defines the matching operation the handler delegates to.
type Service interface {
	FindMatches(ctx context.Context, req matching.Request) (matching.Result, error)
}

// ChildReader loads the authoritative (jurisdiction, legal status) pair for
// the profile; the request never overrides it.
type ChildReader interface {
	Find(ctx context.Context, childID id.ChildID) (child.Child, error)
}

// Handler handles the matching endpoint.
type Handler struct {
	matcher   Service
	children  ChildReader
	directory matching.Directory
	logger    *slog.Logger
}

// New creates a new matching Handler.
func New(matcher Service, children ChildReader, directory matching.Directory, logger *slog.Logger) *Handler {
	return &Handler{matcher: matcher, children: children, directory: directory, logger: logger}
}

// Register registers the matching route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/placements/matching", h.handleMatch)
}

type matchRequest struct {
	ChildID        string             `json:"child_id"`
	PlacementType  string             `json:"placement_type"`
	Urgency        string             `json:"urgency,omitempty"`
	Weights        *matching.Weights  `json:"weights,omitempty"`
	HomeLocation   *matching.Location `json:"home_location"`
	SchoolLocation *matching.Location `json:"school_location,omitempty"`
	CulturalNeeds  []string           `json:"cultural_needs,omitempty"`
	SiblingCount   int                `json:"sibling_count,omitempty"`
}

type matchResponse struct {
	Candidates     []candidateResponse `json:"candidates"`
	WeightsVersion string              `json:"weights_version"`
	Urgency        string              `json:"urgency"`
}

type candidateResponse struct {
	ProviderID string             `json:"provider_id"`
	Name       string             `json:"name"`
	Score      float64            `json:"score"`
	SubScores  matching.SubScores `json:"sub_scores"`
	DistanceKm float64            `json:"distance_km"`
	RiskScore  float64            `json:"risk_score"`
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req matchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	childID, err := id.ParseChildID(req.ChildID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ptype, err := placement.ParseType(req.PlacementType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	urgency, err := parseUrgency(req.Urgency)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.HomeLocation == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "home_location is required"))
		return
	}

	c, err := h.children.Find(ctx, childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	pool, err := h.directory.Candidates(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "provider directory unavailable", "error", err.Error())
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "load candidate pool"))
		return
	}

	result, err := h.matcher.FindMatches(ctx, matching.Request{
		Profile: matching.Profile{
			ChildID:        c.ID,
			Jurisdiction:   c.Jurisdiction,
			LegalStatus:    c.LegalStatus,
			HomeLocation:   *req.HomeLocation,
			SchoolLocation: req.SchoolLocation,
			CulturalNeeds:  req.CulturalNeeds,
			SiblingCount:   req.SiblingCount,
		},
		Type:        ptype,
		Preferences: matching.Preferences{Urgency: urgency, Weights: req.Weights},
		Pool:        pool,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := matchResponse{
		Candidates:     make([]candidateResponse, 0, len(result.Candidates)),
		WeightsVersion: result.WeightsVersion,
		Urgency:        string(result.Urgency),
	}
	for _, cand := range result.Candidates {
		out.Candidates = append(out.Candidates, candidateResponse{
			ProviderID: cand.ProviderID.String(),
			Name:       cand.Name,
			Score:      cand.Score,
			SubScores:  cand.SubScores,
			DistanceKm: cand.DistanceKm,
			RiskScore:  cand.RiskScore,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func parseUrgency(s string) (matching.Urgency, error) {
	switch matching.Urgency(s) {
	case "", matching.UrgencyStandard:
		return matching.UrgencyStandard, nil
	case matching.UrgencyImmediate:
		return matching.UrgencyImmediate, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown urgency %q", s)
	}
}
