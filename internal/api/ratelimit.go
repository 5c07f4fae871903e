package api

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ashivkar123/Image-Resizer/internal/logger"
)

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*RedisRateLimiter)(nil)
	_ Limiter = (*HybridRateLimiter)(nil)
)

// RedisRateLimiter counts requests per client in fixed windows shared by
// every API instance. Each window is one counter key that expires with it.
type RedisRateLimiter struct {
	client redis.Cmdable
	rate   int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisRateLimiter(client redis.Cmdable, rate int, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RedisRateLimiter{
		client: client,
		rate:   rate,
		window: window,
		prefix: "resizer:ratelimit:",
		now:    time.Now,
	}
}

// windowKey names the counter for key in the window containing t.
func (rl *RedisRateLimiter) windowKey(key string, t time.Time) string {
	return rl.prefix + key + ":" + strconv.FormatInt(t.UnixNano()/int64(rl.window), 10)
}

func (rl *RedisRateLimiter) allow(ctx context.Context, key string) (bool, error) {
	k := rl.windowKey(key, rl.now())

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.rate), nil
}

// Allow fails open when Redis does not answer.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	ok, err := rl.allow(ctx, key)
	if err != nil {
		return true
	}
	return ok
}

// HybridRateLimiter asks Redis first and falls back to the in-memory token
// bucket for any request Redis cannot answer.
type HybridRateLimiter struct {
	redis    *RedisRateLimiter
	inMemory *RateLimiter
}

func NewHybridRateLimiter(redisClient *redis.Client, rate, burst int, window time.Duration) *HybridRateLimiter {
	hl := &HybridRateLimiter{inMemory: NewRateLimiter(rate, burst)}
	if redisClient != nil {
		hl.redis = NewRedisRateLimiter(redisClient, rate, window)
	}
	return hl
}

func (hl *HybridRateLimiter) Allow(ctx context.Context, key string) bool {
	if hl.redis != nil {
		ok, err := hl.redis.allow(ctx, key)
		if err == nil {
			return ok
		}
		logger.FromContext(ctx).Debug("redis rate limit unavailable, using local bucket", "error", err)
	}
	return hl.inMemory.Allow(ctx, key)
}

func (hl *HybridRateLimiter) Stop() {
	hl.inMemory.Stop()
}
