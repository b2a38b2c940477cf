package app

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter gates how many publish requests per source identity are
// accepted per window. A denied request must produce no side effects.
type Limiter interface {
	Allow(ctx context.Context, sourceID string) bool
}

// NewAllowAllLimiter is the fallback when no rate-limit backend is
// configured: availability over strictness, never fail closed.
func NewAllowAllLimiter() Limiter {
	return allowAll{}
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) bool { return true }

// RedisLimiter keeps a per-identity sliding window in a redis sorted set:
// prune entries older than the window, count, record the attempt.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: time.Second}
}

func (l *RedisLimiter) Allow(ctx context.Context, sourceID string) bool {
	now := time.Now()
	key := "ratelimit:" + sourceID

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(now.Add(-l.window).UnixMilli(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, 2*l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		// Backend trouble must not take the game down with it.
		log.Warn().Err(err).Str("module", "app.admission").Msg("rate-limit backend unavailable, allowing")
		return true
	}
	return countCmd.Val() < int64(l.limit)
}
