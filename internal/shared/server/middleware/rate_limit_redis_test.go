package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisWindow(t *testing.T) {
	now := time.Unix(1_000, 0)
	window, idx := redisWindow(RateLimitRule{Rate: 2, Burst: 20}, now)
	if window != 10*time.Second {
		t.Fatalf("expected 10s window, got %v", window)
	}
	if idx != 100 {
		t.Fatalf("expected window index 100, got %d", idx)
	}

	window, _ = redisWindow(RateLimitRule{Rate: 100, Burst: 1}, now)
	if window != time.Second {
		t.Fatalf("expected window floor of 1s, got %v", window)
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	l := NewRedisLimiter(rdb)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "user-1|AI", RateLimitRule{Rate: 1, Burst: 1}); !ok {
			t.Fatalf("expected requests allowed when redis is unreachable")
		}
	}
}
