package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
)

// RateLimiter counts requests per user in fixed redis windows
type RateLimiter struct {
	redis  *redis.Client
	scope  string
	limit  int
	window time.Duration
}

// NewRateLimiter creates limiter. A nil client allows everything.
func NewRateLimiter(redisClient *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: redisClient, scope: scope, limit: limit, window: window}
}

// Allow checks if the user may proceed
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.redis == nil {
		return true
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s", rl.scope, key)
	count, err := rl.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open
		log.Warn().Err(err).Str("scope", rl.scope).Msg("rate limiter unavailable")
		return true
	}
	if count == 1 {
		rl.redis.Expire(ctx, redisKey, rl.window)
	}

	return count <= int64(rl.limit)
}

// Middleware rejects callers over the limit with 429. Runs after Auth.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := GetUserID(r.Context()).String()
		if !rl.Allow(r.Context(), key) {
			response.Error(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
