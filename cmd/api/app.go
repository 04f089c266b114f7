package main

import (
	"expvar"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/scholarbee/scholarbee-api/internal/config"
	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/dashboard"
	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/upload"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
	"github.com/scholarbee/scholarbee-api/internal/middleware"
	"github.com/scholarbee/scholarbee-api/internal/pkg/jwt"
	gateway "github.com/scholarbee/scholarbee-api/internal/pkg/payment"
	"github.com/scholarbee/scholarbee-api/internal/pkg/realtime"
	pkgresponse "github.com/scholarbee/scholarbee-api/internal/pkg/response"
	"github.com/scholarbee/scholarbee-api/internal/pkg/storage"
)

const (
	withdrawLimit = 5
	depositLimit  = 10
	limitWindow   = time.Minute
)

// deps are the process-wide clients; everything but jwt may be nil
type deps struct {
	jwt       *jwt.Service
	hub       *realtime.Hub
	redis     *redis.Client
	documents storage.Storage
	queue     payment.Queue
	simulator gateway.Simulator
}

type app struct {
	router   http.Handler
	payments *payment.Service
}

func newApp(cfg *config.Config, repos *repositories, d deps) *app {
	if d.simulator == nil {
		d.simulator = gateway.NewRandomSimulator(cfg.PaymentSuccessRate)
	}

	// ---------- Services ----------
	scholarshipService := scholarship.NewService(repos.scholarships)
	applicationService := application.NewService(repos.applications, repos.scholarships)
	walletService := wallet.NewService(repos.wallets)
	fundingService := funding.NewService(repos.funding)
	paymentService := payment.NewService(repos.payments, repos.scholarships, d.simulator, payment.Config{
		Currency:        cfg.Currency,
		ProcessingDelay: cfg.PaymentProcessingDelay,
		AutoProcess:     cfg.PaymentAutoProcess,
	})
	dashboardService := dashboard.NewService(repos.dashboard)
	uploadService := upload.NewService(d.documents, cfg.UploadURLTTL)

	if d.hub != nil {
		applicationService.SetEventPublisher(d.hub)
		fundingService.SetEventPublisher(d.hub)
		paymentService.SetEventPublisher(d.hub)
	}
	if d.queue != nil {
		paymentService.SetQueue(d.queue)
	}
	if d.documents != nil {
		applicationService.SetDocumentChecker(d.documents)
	}
	if cfg.FundingAutoOnApproval {
		applicationService.SetFunder(fundingService)
	}

	// ---------- Handlers ----------
	scholarshipHandler := scholarship.NewHandler(scholarshipService)
	applicationHandler := application.NewHandler(applicationService)
	fundingHandler := funding.NewHandler(fundingService)
	walletHandler := wallet.NewHandler(walletService)
	paymentHandler := payment.NewHandler(paymentService)
	dashboardHandler := dashboard.NewHandler(dashboardService)
	uploadHandler := upload.NewHandler(uploadService)

	authMiddleware := middleware.Auth(d.jwt)
	optionalAuth := middleware.OptionalAuth(d.jwt)
	withdrawLimiter := middleware.NewRateLimiter(d.redis, "withdraw", withdrawLimit, limitWindow)
	depositLimiter := middleware.NewRateLimiter(d.redis, "deposit", depositLimit, limitWindow)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint stays outside Compress and Timeout
	if d.hub != nil {
		wsHandler := realtime.NewHandler(d.hub, cfg.AllowedOrigins)
		r.With(middleware.WebSocketAuth(d.jwt)).Get("/ws", wsHandler.ServeWS)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]any{
			"status":  "ok",
			"version": "1.0.0",
			"store":   cfg.StoreDriver,
			"redis":   d.redis != nil,
			"uploads": uploadService.Available(),
		}
		if d.hub != nil {
			health["ws_connections"] = d.hub.ConnectionCount()
		}
		pkgresponse.OK(w, health)
	})
	r.Handle("/debug/vars", expvar.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/scholarships", scholarshipHandler.Routes(authMiddleware, optionalAuth, applicationHandler.ScholarshipRoutes(authMiddleware)))
		r.Mount("/applications", applicationHandler.Routes(authMiddleware, fundingHandler.ApplicationRoutes()))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware, withdrawLimiter.Middleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware, depositLimiter.Middleware))
		r.Mount("/uploads", uploadHandler.Routes(authMiddleware))
		r.Mount("/dashboard", dashboard.Routes(dashboardHandler, authMiddleware))
	})

	return &app{router: r, payments: paymentService}
}
