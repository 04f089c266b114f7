package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const resolverBatch = 50

// Resolver settles deposits whose processing delay has elapsed
type Resolver struct {
	svc      *Service
	queue    Queue
	interval time.Duration
	wake     <-chan struct{}
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewResolver creates a resolver. queue may be nil; the database sweep always runs.
func NewResolver(svc *Service, queue Queue, interval time.Duration) *Resolver {
	if interval == 0 {
		interval = time.Second
	}
	return &Resolver{
		svc:      svc,
		queue:    queue,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// SetWake makes the resolver tick as soon as wake fires
func (r *Resolver) SetWake(wake <-chan struct{}) { r.wake = wake }

// Start begins the background loop
func (r *Resolver) Start() {
	log.Info().Dur("interval", r.interval).Msg("Starting payment resolver...")
	r.wg.Add(1)
	go r.loop()
}

// Stop stops the loop and waits for the current tick to finish
func (r *Resolver) Stop() {
	log.Info().Msg("Stopping payment resolver...")
	close(r.stopCh)
	r.wg.Wait()
}

func (r *Resolver) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	r.runTick()

	for {
		select {
		case <-ticker.C:
			r.runTick()
		case _, ok := <-r.wake:
			if !ok {
				r.wake = nil
				continue
			}
			// Wake-ups arrive when a job is queued; its delay may not have passed yet
			r.runTick()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Resolver) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r.Tick(ctx)
}

// Tick resolves every due payment once and returns how many changed state
func (r *Resolver) Tick(ctx context.Context) int {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID

	if r.queue != nil {
		claimed, err := r.queue.Claim(ctx, r.svc.now(), resolverBatch)
		if err != nil {
			log.Error().Err(err).Msg("Failed to claim due payments from queue")
		}
		ids = append(ids, claimed...)
	}

	// Sweep catches jobs lost from the queue
	due, err := r.svc.DueIDs(ctx, resolverBatch)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list due payments")
	}
	ids = append(ids, due...)

	resolved := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		_, changed, err := r.svc.Resolve(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("payment_id", id.String()).Msg("Failed to resolve payment")
			continue
		}
		if changed {
			resolved++
		}
	}

	if resolved > 0 {
		log.Info().Int("count", resolved).Msg("Resolved payments")
	}
	return resolved
}
