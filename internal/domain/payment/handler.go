package payment

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

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initiate handles POST /payments
// @Summary Deposit scholarship budget
// @Description Creates a deposit for the full budget. The outcome arrives asynchronously; poll GET /payments/{id}.
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InitiateRequest true "Deposit"
// @Success 202 {object} response.Response{data=Payment}
// @Failure 400,403,404,409,422 {object} response.Response
// @Router /payments [post]
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	pay, err := h.service.Initiate(r.Context(), middleware.GetPrincipal(r.Context()), &req)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Accepted(w, pay)
}

// Process handles POST /payments/{id}/process
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	pay, err := h.service.Process(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.Accepted(w, pay)
}

// Get handles GET /payments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	pay, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, pay)
}

// History handles GET /payments/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	page, limit := response.ParsePagination(r, 20, 100)
	filter := &HistoryFilter{
		Status: Status(r.URL.Query().Get("status")),
		Page:   page,
		Limit:  limit,
	}

	items, total, err := h.service.History(r.Context(), middleware.GetPrincipal(r.Context()), filter)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	if items == nil {
		items = []*Payment{}
	}
	response.WithMeta(w, items, response.NewMeta(total, page, limit))
}

// Stats handles GET /payments/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return uuid.Nil, false
	}
	return id, true
}

// Routes returns payment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, initiateLimits ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireSponsor())

	r.With(initiateLimits...).Post("/", h.Initiate)
	r.Get("/history", h.History)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/process", h.Process)

	return r
}
