package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter applies fixed-window counters keyed by scope.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// FixedWindowAllow counts one hit against scope. The window starts at the
// first hit and the counter expires with it.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	hits, err := c.incrWindow(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, 0, err
	}
	return hits <= limit, hits, nil
}

func (c *Client) incrWindow(ctx context.Context, k string, window time.Duration) (int64, error) {
	s, err := c.cmd()
	if err != nil {
		return 0, err
	}
	hits, err := s.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", k, err)
	}
	if hits == 1 && window > 0 {
		if err := s.Expire(ctx, k, window).Err(); err != nil {
			return hits, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return hits, nil
}
