package scholarship

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/errorhandler"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
	"github.com/scholarbee/scholarbee-api/internal/pkg/validator"
)

// Handler handles scholarship HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates scholarship handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /scholarships
// @Summary Create scholarship
// @Tags Scholarship
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateScholarshipRequest true "Scholarship"
// @Success 201 {object} response.Response{data=ScholarshipResponse}
// @Failure 400,403,422,500 {object} response.Response
// @Router /scholarships [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateScholarshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	sch, err := h.service.Create(r.Context(), middleware.GetPrincipal(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, ResponseFromEntity(sch))
}

// GetByID handles GET /scholarships/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid scholarship ID")
		return
	}

	sch, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(sch))
}

// List handles GET /scholarships
// @Summary Browse active scholarships
// @Tags Scholarship
// @Produce json
// @Param category query string false "Category"
// @Param q query string false "Search text"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response{data=[]ScholarshipResponse}
// @Router /scholarships [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := response.ParsePagination(r, 20, 100)
	filter := &ListFilter{
		Category: r.URL.Query().Get("category"),
		Search:   strings.TrimSpace(r.URL.Query().Get("q")),
		Page:     page,
		Limit:    limit,
	}

	items, total, err := h.service.ListActive(r.Context(), filter)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.WithMeta(w, toResponses(items), response.NewMeta(total, page, limit))
}

// ListMy handles GET /scholarships/my
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMine(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, toResponses(items))
}

// Update handles PUT /scholarships/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid scholarship ID")
		return
	}

	var req UpdateScholarshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	sch, err := h.service.Update(r.Context(), middleware.GetPrincipal(r.Context()), id, &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(sch))
}

// Close handles PATCH /scholarships/{id}/close
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid scholarship ID")
		return
	}

	sch, err := h.service.Close(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ResponseFromEntity(sch))
}

// Delete handles DELETE /scholarships/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid scholarship ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetPrincipal(r.Context()), id); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.NoContent(w)
}

func toResponses(items []*Scholarship) []*ScholarshipResponse {
	out := make([]*ScholarshipResponse, len(items))
	for i, s := range items {
		out[i] = ResponseFromEntity(s)
	}
	return out
}
