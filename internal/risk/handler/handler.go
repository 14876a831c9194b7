// Package handler exposes breakdown-risk assessment over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"careflow/internal/placement"
	"careflow/internal/risk"
	"careflow/internal/transport/http/shared"
	id "careflow/pkg/domain"
)

// Service defines the risk operations the handler delegates to.
type Service interface {
	Assess(ctx context.Context, params risk.AssessParams) (risk.Assessment, error)
	Latest(ctx context.Context, placementID id.PlacementID) (risk.Assessment, error)
	History(ctx context.Context, placementID id.PlacementID) ([]risk.Assessment, error)
	HighRisk(ctx context.Context) ([]risk.Assessment, error)
}

// PlacementReader resolves the placement under assessment so the request only
// has to name its ID.
type PlacementReader interface {
	Find(ctx context.Context, placementID id.PlacementID) (placement.Placement, error)
}

// Handler handles risk-assessment endpoints.
type Handler struct {
	assessments Service
	placements  PlacementReader
	logger      *slog.Logger
}

// New creates a new risk Handler.
func New(assessments Service, placements PlacementReader, logger *slog.Logger) *Handler {
	return &Handler{assessments: assessments, placements: placements, logger: logger}
}

// Register registers the risk routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/placements/{id}/risk", h.handleAssess)
	r.Get("/placements/{id}/risk", h.handleLatest)
	r.Get("/placements/{id}/risk/history", h.handleHistory)
	r.Get("/placements/breakdown-risk", h.handleHighRisk)
}

// assessRequest carries the signals gathered by the caller: placement moves
// from case history, incidents from the safeguarding collaborator, visit and
// escalation data from case management.
type assessRequest struct {
	TransitionCount int `json:"transition_count"`
	// DaysSinceLastMove distinguishes "moved today" (0) from "never moved";
	// omit the field for a child who has never moved.
	DaysSinceLastMove *int `json:"days_since_last_move,omitempty"`
	IncidentCount     int  `json:"incident_count"`
	MissedVisits      int  `json:"missed_visits"`
	EscalationCount   int  `json:"escalation_count"`
}

type assessmentResponse struct {
	ID          string           `json:"id"`
	ChildID     string           `json:"child_id"`
	PlacementID string           `json:"placement_id"`
	ProviderID  string           `json:"provider_id"`
	Score       float64          `json:"score"`
	Band        string           `json:"band"`
	NextReview  string           `json:"next_review"`
	Factors     []factorResponse `json:"factors"`
	Superseded  bool             `json:"superseded"`
	CreatedAt   string           `json:"created_at"`
}

type factorResponse struct {
	Kind   string  `json:"kind"`
	Raw    float64 `json:"raw"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req assessRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.placements.Find(ctx, placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	daysSinceLastMove := -1
	if req.DaysSinceLastMove != nil {
		daysSinceLastMove = *req.DaysSinceLastMove
	}

	a, err := h.assessments.Assess(ctx, risk.AssessParams{
		ChildID:     p.ChildID,
		PlacementID: p.ID,
		ProviderID:  p.ProviderID,
		Input: risk.Input{
			TransitionCount:   req.TransitionCount,
			DaysSinceLastMove: daysSinceLastMove,
			IncidentCount:     req.IncidentCount,
			MissedVisits:      req.MissedVisits,
			EscalationCount:   req.EscalationCount,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "risk assessment failed",
			"placement_id", placementID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toAssessmentResponse(a))
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	a, err := h.assessments.Latest(r.Context(), placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toAssessmentResponse(a))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	history, err := h.assessments.History(r.Context(), placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]assessmentResponse, 0, len(history))
	for _, a := range history {
		out = append(out, toAssessmentResponse(a))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	listed, err := h.assessments.HighRisk(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]assessmentResponse, 0, len(listed))
	for _, a := range listed {
		out = append(out, toAssessmentResponse(a))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func toAssessmentResponse(a risk.Assessment) assessmentResponse {
	factors := make([]factorResponse, 0, len(a.Factors))
	for _, f := range a.Factors {
		factors = append(factors, factorResponse{
			Kind:   string(f.Kind),
			Raw:    f.Raw,
			Score:  f.Score,
			Weight: f.Weight,
		})
	}
	return assessmentResponse{
		ID:          a.ID.String(),
		ChildID:     a.ChildID.String(),
		PlacementID: a.PlacementID.String(),
		ProviderID:  a.ProviderID.String(),
		Score:       a.Score,
		Band:        string(a.Band),
		NextReview:  a.NextReview.UTC().Format(time.RFC3339),
		Factors:     factors,
		Superseded:  a.Superseded,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
