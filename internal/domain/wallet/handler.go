package wallet

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/errorhandler"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
	"github.com/scholarbee/scholarbee-api/internal/pkg/validator"
)

// IdempotencyHeader carries the client's retry key for withdrawals
const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get handles GET /wallet
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetWallet(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, view)
}

// UpdateUPI handles PUT /wallet/upi
func (h *Handler) UpdateUPI(w http.ResponseWriter, r *http.Request) {
	var req UpdateUPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	wallet, err := h.svc.UpdateUPI(r.Context(), middleware.GetPrincipal(r.Context()), req.UPIID)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, wallet)
}

// Transactions handles GET /wallet/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	page, limit := response.ParsePagination(r, 20, 100)
	filter := &TransactionFilter{
		Type:  TransactionType(r.URL.Query().Get("type")),
		Page:  page,
		Limit: limit,
	}

	items, total, err := h.svc.Transactions(r.Context(), middleware.GetPrincipal(r.Context()), filter)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	if items == nil {
		items = []*Transaction{}
	}
	response.WithMeta(w, items, response.NewMeta(total, page, limit))
}

// Stats handles GET /wallet/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, stats)
}

// Audit handles GET /wallet/audit
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Audit(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Withdraw handles POST /wallet/withdraw
// @Summary Withdraw to UPI
// @Tags Wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Retry key"
// @Param request body WithdrawRequest true "Amount"
// @Success 200 {object} response.Response{data=WithdrawResult}
// @Failure 400,403,409 {object} response.Response
// @Router /wallet/withdraw [post]
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.svc.Withdraw(r.Context(), middleware.GetPrincipal(r.Context()), req.Amount, r.Header.Get(IdempotencyHeader))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Routes returns /wallet router. withdrawLimits wrap only the withdrawal endpoint.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, withdrawLimits ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireStudent())
	r.Get("/", h.Get)
	r.Put("/upi", h.UpdateUPI)
	r.Get("/transactions", h.Transactions)
	r.Get("/stats", h.Stats)
	r.Get("/audit", h.Audit)
	r.With(withdrawLimits...).Post("/withdraw", h.Withdraw)
	return r
}
