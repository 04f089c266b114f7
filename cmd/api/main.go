package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/config"
	"github.com/scholarbee/scholarbee-api/internal/domain/application"
	"github.com/scholarbee/scholarbee-api/internal/domain/dashboard"
	"github.com/scholarbee/scholarbee-api/internal/domain/funding"
	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/domain/wallet"
	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
	"github.com/scholarbee/scholarbee-api/internal/pkg/jwt"
	"github.com/scholarbee/scholarbee-api/internal/pkg/logger"
	"github.com/scholarbee/scholarbee-api/internal/pkg/realtime"
	"github.com/scholarbee/scholarbee-api/internal/pkg/storage"
	"github.com/scholarbee/scholarbee-api/internal/store/memory"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Msg("Starting ScholarBEE API")

	ctx := context.Background()

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage backend")
	}
	defer closeRepos()

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		// Redis is an accelerator; events stay local and the resolver sweeps the database
		log.Warn().Err(err).Msg("Redis unavailable, continuing without it")
		redisClient = nil
	}
	defer database.CloseRedis(redisClient)

	var documents storage.Storage
	if cfg.StorageConfigured() {
		r2, err := storage.NewR2Storage(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
			Endpoint:        cfg.R2Endpoint,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
		documents = r2
	} else {
		log.Warn().Msg("R2 storage not configured, document uploads disabled")
	}

	hub := realtime.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	var queue payment.Queue
	var redisQueue *payment.RedisQueue
	if redisClient != nil {
		redisQueue = payment.NewRedisQueue(redisClient)
		queue = redisQueue
	}

	a := newApp(cfg, repos, deps{
		jwt:       jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL),
		hub:       hub,
		redis:     redisClient,
		documents: documents,
		queue:     queue,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if cfg.PaymentResolverEmbedded {
		resolver := payment.NewResolver(a.payments, queue, cfg.PaymentResolverInterval)
		if redisQueue != nil {
			resolver.SetWake(redisQueue.Wake(workerCtx))
		}
		resolver.Start()
		defer resolver.Stop()
	} else {
		log.Info().Msg("Payment resolver disabled, expecting cmd/payment-worker")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// repositories is the storage backend selected by STORE_DRIVER
type repositories struct {
	scholarships scholarship.Repository
	applications application.Repository
	wallets      wallet.Repository
	payments     payment.Repository
	funding      funding.Repository
	dashboard    dashboard.Repository
}

func memoryRepositories(st *memory.Store) *repositories {
	return &repositories{
		scholarships: st.Scholarships(),
		applications: st.Applications(),
		wallets:      st.Wallets(),
		payments:     st.Payments(),
		funding:      st,
		dashboard:    st,
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, func(), error) {
	if cfg.UsesMemoryStore() {
		log.Warn().Msg("Using in-memory store, all state is lost on restart")
		return memoryRepositories(memory.New()), func() {}, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		database.ClosePostgres(db)
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return &repositories{
		scholarships: scholarship.NewRepository(db),
		applications: application.NewRepository(db),
		wallets:      wallet.NewRepository(db),
		payments:     payment.NewRepository(db),
		funding:      funding.NewRepository(db),
		dashboard:    dashboard.NewRepository(db),
	}, func() { database.ClosePostgres(db) }, nil
}
