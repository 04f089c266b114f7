package funding

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/errorhandler"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
)

// Handler handles funding HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates funding handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// FundResponse is returned by POST /applications/{id}/fund
type FundResponse struct {
	Application   *application.ApplicationResponse `json:"application"`
	Transaction   *wallet.Transaction              `json:"transaction"`
	AlreadyFunded bool                             `json:"already_funded"`
}

// Fund handles POST /applications/{id}/fund
// @Summary Pay out approved application
// @Tags Funding
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response{data=FundResponse}
// @Failure 400,403,404,409 {object} response.Response
// @Router /applications/{id}/fund [post]
func (h *Handler) Fund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid application ID")
		return
	}

	result, err := h.service.Fund(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, FundResponse{
		Application:   application.ResponseFromEntity(result.Application),
		Transaction:   result.Transaction,
		AlreadyFunded: result.AlreadyFunded,
	})
}

// ApplicationRoutes mounts /applications/{id}/fund on the applications router
func (h *Handler) ApplicationRoutes() func(r chi.Router) {
	return func(r chi.Router) {
		r.With(middleware.RequireSponsor()).Post("/{id}/fund", h.Fund)
	}
}
