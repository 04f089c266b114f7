package scholarship

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholarbee/scholarbee-api/internal/middleware"
)

// Routes returns scholarship router.
// extra lets other domains hang nested routes such as /{id}/applications.
func (h *Handler) Routes(authMiddleware, optionalAuth func(http.Handler) http.Handler, extra ...func(r chi.Router)) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Get("/", h.List)
	r.With(optionalAuth).Get("/{id}", h.GetByID)

	// Sponsor routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireSponsor())
		r.Post("/", h.Create)
		r.Get("/my", h.ListMy)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/close", h.Close)
		r.Delete("/{id}", h.Delete)
	})

	for _, mount := range extra {
		mount(r)
	}

	return r
}
