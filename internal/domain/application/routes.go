package application

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholarbee/scholarbee-api/internal/middleware"
)

// Routes returns /applications router. extra mounts sibling routes such as /{id}/fund.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, extra ...func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.With(middleware.RequireStudent()).Get("/my", h.ListMy)
	r.Get("/{id}", h.GetByID)
	r.With(middleware.RequireStudent()).Patch("/{id}/receipt", h.AttachReceipt)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSponsor())
		r.Patch("/{id}/review", h.StartReview)
		r.Patch("/{id}/decision", h.Decide)
		r.Patch("/{id}/receipt/verify", h.VerifyReceipt)
	})

	for _, mount := range extra {
		mount(r)
	}

	return r
}

// ScholarshipRoutes mounts /scholarships/{id}/applications
func (h *Handler) ScholarshipRoutes(authMiddleware func(http.Handler) http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.With(authMiddleware, middleware.RequireStudent()).Post("/{id}/applications", h.Submit)
		r.With(authMiddleware, middleware.RequireSponsor()).Get("/{id}/applications", h.ListForScholarship)
	}
}
