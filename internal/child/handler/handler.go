// Package handler exposes child records over HTTP: intake, legal status
// changes, cross-border transfer, and the statutory deadline view.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"careflow/internal/child"
	"careflow/internal/jurisdiction"
	"careflow/internal/transport/http/shared"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
)

// Service defines the child operations the handler delegates to.
type Service interface {
	Intake(ctx context.Context, params child.IntakeParams) (child.Child, error)
	Find(ctx context.Context, childID id.ChildID) (child.Child, error)
	ChangeLegalStatus(ctx context.Context, childID id.ChildID, status jurisdiction.LegalStatus) (child.Child, error)
	TransferJurisdiction(ctx context.Context, childID id.ChildID, dest jurisdiction.Jurisdiction) (child.Child, error)
	RecordReviewHeld(ctx context.Context, childID id.ChildID) (child.Child, error)
}

// Handler handles child-record endpoints.
type Handler struct {
	children Service
	logger   *slog.Logger
}

// New creates a new child Handler.
func New(children Service, logger *slog.Logger) *Handler {
	return &Handler{children: children, logger: logger}
}

// Register registers the child routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/children", h.handleIntake)
	r.Get("/children/{id}", h.handleGet)
	r.Put("/children/{id}/legal-status", h.handleChangeLegalStatus)
	r.Put("/children/{id}/jurisdiction", h.handleTransferJurisdiction)
	r.Get("/children/{id}/deadlines", h.handleDeadlines)
	r.Post("/children/{id}/reviews", h.handleRecordReview)
}

type intakeRequest struct {
	Jurisdiction  string `json:"jurisdiction"`
	LegalStatus   string `json:"legal_status"`
	AdmissionDate string `json:"admission_date"`
}

type childResponse struct {
	ID            string            `json:"id"`
	Jurisdiction  string            `json:"jurisdiction"`
	LegalStatus   string            `json:"legal_status"`
	AdmissionDate string            `json:"admission_date"`
	ReviewsHeld   int               `json:"reviews_held"`
	Deadlines     deadlinesResponse `json:"deadlines"`
}

type deadlinesResponse struct {
	NextReview           string `json:"next_review"`
	NextHealthAssessment string `json:"next_health_assessment"`
	NextEducationPlan    string `json:"next_education_plan"`
	CarePlanLabel        string `json:"care_plan_label,omitempty"`
}

func (h *Handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req intakeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	j, err := jurisdiction.Parse(req.Jurisdiction)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	status, err := jurisdiction.ParseLegalStatus(req.LegalStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	admission, err := parseDate(req.AdmissionDate)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.children.Intake(ctx, child.IntakeParams{
		Jurisdiction:  j,
		LegalStatus:   status,
		AdmissionDate: admission,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "child intake rejected", "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toChildResponse(c))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.children.Find(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toChildResponse(c))
}

type changeLegalStatusRequest struct {
	LegalStatus string `json:"legal_status"`
}

func (h *Handler) handleChangeLegalStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req changeLegalStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	status, err := jurisdiction.ParseLegalStatus(req.LegalStatus)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.children.ChangeLegalStatus(ctx, childID, status)
	if err != nil {
		h.logger.WarnContext(ctx, "legal status change rejected",
			"child_id", childID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toChildResponse(c))
}

type transferRequest struct {
	Jurisdiction string `json:"jurisdiction"`
}

func (h *Handler) handleTransferJurisdiction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req transferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	dest, err := jurisdiction.Parse(req.Jurisdiction)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.children.TransferJurisdiction(ctx, childID, dest)
	if err != nil {
		h.logger.WarnContext(ctx, "jurisdiction transfer rejected",
			"child_id", childID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toChildResponse(c))
}

func (h *Handler) handleDeadlines(w http.ResponseWriter, r *http.Request) {
	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.children.Find(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := toDeadlinesResponse(c.Deadlines)
	if label, err := jurisdiction.CarePlanTerminology(c.Jurisdiction); err == nil {
		resp.CarePlanLabel = label
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	childID, err := id.ParseChildID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.children.RecordReviewHeld(r.Context(), childID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toChildResponse(c))
}

func toChildResponse(c child.Child) childResponse {
	return childResponse{
		ID:            c.ID.String(),
		Jurisdiction:  string(c.Jurisdiction),
		LegalStatus:   string(c.LegalStatus),
		AdmissionDate: c.AdmissionDate.Format(time.DateOnly),
		ReviewsHeld:   c.ReviewsHeld,
		Deadlines:     toDeadlinesResponse(c.Deadlines),
	}
}

func toDeadlinesResponse(d jurisdiction.Deadlines) deadlinesResponse {
	return deadlinesResponse{
		NextReview:           d.NextReview.Format(time.DateOnly),
		NextHealthAssessment: d.NextHealthAssessment.Format(time.DateOnly),
		NextEducationPlan:    d.NextEducationPlan.Format(time.DateOnly),
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "admission_date is required")
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
