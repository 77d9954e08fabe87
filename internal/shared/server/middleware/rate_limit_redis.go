package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-builder/internal/shared/telemetry"
)

const redisRateKeyPrefix = "resume-builder:rate:"

// RedisLimiter shares rate-limit counters across instances using fixed
// windows of Burst requests per Burst/Rate seconds. Redis errors fail open.
type RedisLimiter struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, now: time.Now}
}

// redisWindow returns the window length and the index of the window containing now.
func redisWindow(rule RateLimitRule, now time.Time) (time.Duration, int64) {
	window := time.Duration(float64(rule.Burst) / rule.Rate * float64(time.Second))
	if window < time.Second {
		window = time.Second
	}
	return window, now.UnixNano() / int64(window)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.rdb == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	window, idx := redisWindow(rule, now)
	redisKey := redisRateKeyPrefix + key + ":" + strconv.FormatInt(idx, 10)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, window+time.Second)
		return nil
	})
	if err != nil {
		telemetry.Warn("ratelimit.redis.failed", map[string]any{"error": err.Error()})
		return true, 0
	}
	if incr.Val() <= int64(rule.Burst) {
		return true, 0
	}
	windowEnd := time.Unix(0, (idx+1)*int64(window))
	return false, windowEnd.Sub(now)
}
