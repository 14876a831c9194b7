// Package handler exposes the placement lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"careflow/internal/placement"
	"careflow/internal/transport/http/shared"
	id "careflow/pkg/domain"
)

// Service defines the placement operations the handler delegates to.
type Service interface {
	Propose(ctx context.Context, childID id.ChildID, providerID id.ProviderID, ptype placement.Type) (placement.Placement, error)
	Find(ctx context.Context, placementID id.PlacementID) (placement.Placement, error)
	Activate(ctx context.Context, placementID id.PlacementID) (placement.Placement, error)
	End(ctx context.Context, placementID id.PlacementID) (placement.Placement, error)
	History(ctx context.Context, childID id.ChildID) ([]placement.Placement, error)
}

// Handler handles placement lifecycle endpoints.
type Handler struct {
	placements Service
	logger     *slog.Logger
}

// New creates a new placement Handler.
func New(placements Service, logger *slog.Logger) *Handler {
	return &Handler{placements: placements, logger: logger}
}

// Register registers the placement routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/placements", h.handlePropose)
	r.Get("/placements/{id}", h.handleGet)
	r.Post("/placements/{id}/activate", h.handleActivate)
	r.Post("/placements/{id}/end", h.handleEnd)
	r.Get("/children/{id}/placements", h.handleHistory)
}

type proposeRequest struct {
	ChildID    string `json:"child_id"`
	ProviderID string `json:"provider_id"`
	Type       string `json:"type"`
}

type placementResponse struct {
	ID         string  `json:"id"`
	ChildID    string  `json:"child_id"`
	ProviderID string  `json:"provider_id"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
}

func (h *Handler) handlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req proposeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	childID, err := id.ParseChildID(req.ChildID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	providerID, err := id.ParseProviderID(req.ProviderID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ptype, err := placement.ParseType(req.Type)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.placements.Propose(ctx, childID, providerID, ptype)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toPlacementResponse(p))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.placements.Find(r.Context(), placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPlacementResponse(p))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.placements.Activate(ctx, placementID)
	if err != nil {
		h.logger.WarnContext(ctx, "placement activation rejected",
			"placement_id", placementID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPlacementResponse(p))
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	placementID, err := id.ParsePlacementID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	p, err := h.placements.End(r.Context(), placementID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPlacementResponse(p))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	history, err := h.placements.History(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]placementResponse, 0, len(history))
	for _, p := range history {
		out = append(out, toPlacementResponse(p))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func toPlacementResponse(p placement.Placement) placementResponse {
	return placementResponse{
		ID:         p.ID.String(),
		ChildID:    p.ChildID.String(),
		ProviderID: p.ProviderID.String(),
		Type:       p.Type.String(),
		Status:     string(p.Status),
		StartDate:  formatTime(p.StartDate),
		EndDate:    formatTime(p.EndDate),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
