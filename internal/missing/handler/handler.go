// Package handler exposes the missing-episode lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"careflow/internal/missing"
	"careflow/internal/transport/http/shared"
	id "careflow/pkg/domain"
)

// Service defines the missing-episode operations the handler delegates to.
type Service interface {
	ReportMissing(ctx context.Context, params missing.ReportParams) (missing.Episode, error)
	MarkReturned(ctx context.Context, params missing.ReturnParams) (missing.Episode, error)
	Close(ctx context.Context, episodeID id.EpisodeID) (missing.Episode, error)
	OpenEpisode(ctx context.Context, placementID id.PlacementID) (missing.Episode, error)
	History(ctx context.Context, placementID id.PlacementID) ([]missing.Episode, error)
}

// Handler handles missing-episode endpoints.
type Handler struct {
	episodes Service
	logger   *slog.Logger
}

// New creates a new missing Handler.
func New(episodes Service, logger *slog.Logger) *Handler {
	return &Handler{episodes: episodes, logger: logger}
}

// Register registers the missing-episode routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/placements/{id}/missing", h.handleReport)
	r.Post("/placements/{id}/return", h.handleReturn)
	r.Post("/episodes/{id}/close", h.handleClose)
	r.Get("/placements/{id}/episodes", h.handleHistory)
}

type reportRequest struct {
	LastKnownLocation string   `json:"last_known_location"`
	PoliceNotified    bool     `json:"police_notified"`
	Triggers          []string `json:"triggers,omitempty"`
}

type returnRequest struct {
	Location  string `json:"location"`
	Condition string `json:"condition"`
}

type episodeResponse struct {
	ID                 string   `json:"id"`
	ChildID            string   `json:"child_id"`
	PlacementID        string   `json:"placement_id"`
	State              string   `json:"state"`
	ReportedAt         string   `json:"reported_at"`
	LastKnownLocation  string   `json:"last_known_location,omitempty"`
	PoliceNotified     bool     `json:"police_notified"`
	RiskLevel          string   `json:"risk_level"`
	Triggers           []string `json:"triggers,omitempty"`
	ReturnedAt         *string  `json:"returned_at,omitempty"`
	ReturnLocation     string   `json:"return_location,omitempty"`
	ReturnCondition    string   `json:"return_condition,omitempty"`
	ReturnInterviewDue bool     `json:"return_interview_due"`
	ClosedAt           *string  `json:"closed_at,omitempty"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req reportRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	triggers := make([]missing.Trigger, 0, len(req.Triggers))
	for _, raw := range req.Triggers {
		t, err := missing.ParseTrigger(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		triggers = append(triggers, t)
	}

	e, err := h.episodes.ReportMissing(ctx, missing.ReportParams{
		PlacementID:       placementID,
		LastKnownLocation: req.LastKnownLocation,
		PoliceNotified:    req.PoliceNotified,
		Triggers:          triggers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "missing report rejected",
			"placement_id", placementID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toEpisodeResponse(e))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req returnRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	open, err := h.episodes.OpenEpisode(ctx, placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	e, err := h.episodes.MarkReturned(ctx, missing.ReturnParams{
		EpisodeID: open.ID,
		Location:  req.Location,
		Condition: req.Condition,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toEpisodeResponse(e))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	episodeID, err := id.ParseEpisodeID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	e, err := h.episodes.Close(r.Context(), episodeID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toEpisodeResponse(e))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	history, err := h.episodes.History(r.Context(), placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]episodeResponse, 0, len(history))
	for _, e := range history {
		out = append(out, toEpisodeResponse(e))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func toEpisodeResponse(e missing.Episode) episodeResponse {
	triggers := make([]string, 0, len(e.Triggers))
	for _, t := range e.Triggers {
		triggers = append(triggers, string(t))
	}
	return episodeResponse{
		ID:                 e.ID.String(),
		ChildID:            e.ChildID.String(),
		PlacementID:        e.PlacementID.String(),
		State:              string(e.State),
		ReportedAt:         e.ReportedAt.UTC().Format(time.RFC3339),
		LastKnownLocation:  e.LastKnownLocation,
		PoliceNotified:     e.PoliceNotified,
		RiskLevel:          string(e.RiskLevel),
		Triggers:           triggers,
		ReturnedAt:         formatTime(e.ReturnedAt),
		ReturnLocation:     e.ReturnLocation,
		ReturnCondition:    e.ReturnCondition,
		ReturnInterviewDue: e.ReturnInterviewDue,
		ClosedAt:           formatTime(e.ClosedAt),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
