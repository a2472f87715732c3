package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every API instance.
// Key format: ratelimit:<key>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	points int64
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, points int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		points: int64(points),
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	start := l.now().Truncate(l.window)
	k := fmt.Sprintf("ratelimit:%s:%d", key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.points, nil
}
