package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/config"
	"github.com/scholarbee/scholarbee-api/internal/domain/payment"
	"github.com/scholarbee/scholarbee-api/internal/domain/scholarship"
	"github.com/scholarbee/scholarbee-api/internal/pkg/database"
	"github.com/scholarbee/scholarbee-api/internal/pkg/logger"
	gateway "github.com/scholarbee/scholarbee-api/internal/pkg/payment"
	"github.com/scholarbee/scholarbee-api/internal/pkg/realtime"
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

	log.Info().Msg("Starting payment-worker")

	if cfg.UsesMemoryStore() {
		log.Fatal().Msg("payment-worker needs STORE_DRIVER=postgres; the memory store lives inside the API process")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	rdb, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	svc := payment.NewService(
		payment.NewRepository(db),
		scholarship.NewRepository(db),
		gateway.NewRandomSimulator(cfg.PaymentSuccessRate),
		payment.Config{Currency: cfg.Currency, ProcessingDelay: cfg.PaymentProcessingDelay},
	)

	var queue payment.Queue
	var redisQueue *payment.RedisQueue
	if rdb != nil {
		redisQueue = payment.NewRedisQueue(rdb)
		queue = redisQueue
		svc.SetQueue(queue)

		// Sponsors connected to the API instances still get payment.resolved
		hub := realtime.NewHub(rdb)
		go hub.Run()
		defer hub.Shutdown()
		svc.SetEventPublisher(hub)
	} else {
		log.Warn().Msg("Running without Redis: database sweep only, no realtime events")
	}

	resolver := payment.NewResolver(svc, queue, cfg.PaymentResolverInterval)
	if redisQueue != nil {
		resolver.SetWake(redisQueue.Wake(ctx))
	}
	resolver.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info().Msg("Shutdown signal received")
	cancel()
	resolver.Stop()
	log.Info().Msg("payment-worker stopped")
}
