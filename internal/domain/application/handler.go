package application

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/errorhandler"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
	"github.com/scholarbee/scholarbee-api/internal/pkg/validator"
)

// Handler handles application HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates application handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /scholarships/{id}/applications
// @Summary Apply to scholarship
// @Tags Application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scholarship ID"
// @Param request body SubmitRequest true "Application"
// @Success 201 {object} response.Response{data=ApplicationResponse}
// @Failure 400,403,404,409,422 {object} response.Response
// @Router /scholarships/{id}/applications [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	scholarshipID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid scholarship ID")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	app, err := h.service.Submit(r.Context(), middleware.GetPrincipal(r.Context()), scholarshipID, &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, ResponseFromEntity(app))
}

// ListForScholarship handles GET /scholarships/{id}/applications
func (h *Handler) ListForScholarship(w http.ResponseWriter, r *http.Request) {
	scholarshipID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid scholarship ID")
		return
	}

	status := Status(r.URL.Query().Get("status"))
	items, err := h.service.ListForScholarship(r.Context(), middleware.GetPrincipal(r.Context()), scholarshipID, status)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, toResponses(items))
}

// ListMy handles GET /applications/my
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMine(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, toResponses(items))
}

// GetByID handles GET /applications/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(app))
}

// StartReview handles PATCH /applications/{id}/review
func (h *Handler) StartReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	app, err := h.service.StartReview(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(app))
}

// Decide handles PATCH /applications/{id}/decision
// @Summary Approve or reject application
// @Tags Application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body DecisionRequest true "Decision"
// @Success 200 {object} response.Response{data=ApplicationResponse}
// @Failure 400,403,404,409,422 {object} response.Response
// @Router /applications/{id}/decision [patch]
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	app, err := h.service.Decide(r.Context(), middleware.GetPrincipal(r.Context()), id, Status(req.Status))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(app))
}

// AttachReceipt handles PATCH /applications/{id}/receipt
func (h *Handler) AttachReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req ReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	app, err := h.service.AttachReceipt(r.Context(), middleware.GetPrincipal(r.Context()), id, req.Key)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(app))
}

// VerifyReceipt handles PATCH /applications/{id}/receipt/verify
func (h *Handler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	app, err := h.service.VerifyReceipt(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(app))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid application ID")
		return uuid.Nil, false
	}
	return id, true
}
