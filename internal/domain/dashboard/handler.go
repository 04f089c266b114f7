package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/errorhandler"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new dashboard handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSponsorStats returns aggregated stats for sponsor dashboard
// GET /api/v1/dashboard/sponsor
func (h *Handler) GetSponsorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Sponsor(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// GetStudentStats returns aggregated stats for student dashboard
// GET /api/v1/dashboard/student
func (h *Handler) GetStudentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Student(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// Routes returns dashboard routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.With(middleware.RequireSponsor()).Get("/sponsor", h.GetSponsorStats)
	r.With(middleware.RequireStudent()).Get("/student", h.GetStudentStats)

	return r
}
