package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	dueQueueKey      = "payments:due"
	scheduledChannel = "payments:scheduled"
)

// Queue holds deferred resolution jobs
type Queue interface {
	// Schedule registers a payment to be resolved at or after at
	Schedule(ctx context.Context, id uuid.UUID, at time.Time) error
	// Claim removes and returns up to limit payments due by now.
	// A payment is handed to exactly one caller.
	Claim(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// RedisQueue is a sorted set of payment ids scored by due time
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates queue on top of redis
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Schedule adds the payment and wakes sleeping resolvers
func (q *RedisQueue) Schedule(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := q.client.ZAdd(ctx, dueQueueKey, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: id.String(),
	}).Err()
	if err != nil {
		return err
	}
	if err := q.client.Publish(ctx, scheduledChannel, id.String()).Err(); err != nil {
		log.Warn().Err(err).Str("payment_id", id.String()).Msg("failed to publish payment wake-up")
	}
	return nil
}

// Claim pops due ids. ZREM decides ownership when several workers race.
func (q *RedisQueue) Claim(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	members, err := q.client.ZRangeByScore(ctx, dueQueueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	claimed := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		removed, err := q.client.ZRem(ctx, dueQueueKey, m).Result()
		if err != nil {
			return claimed, err
		}
		if removed == 0 {
			continue
		}
		id, err := uuid.Parse(m)
		if err != nil {
			log.Warn().Str("member", m).Msg("dropping malformed payment id from queue")
			continue
		}
		claimed = append(claimed, id)
	}
	return claimed, nil
}

// Wake returns a channel that fires whenever a payment is scheduled on any instance
func (q *RedisQueue) Wake(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)
	sub := q.client.Subscribe(ctx, scheduledChannel)
	go func() {
		defer sub.Close()
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
