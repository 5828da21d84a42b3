package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "payment:advance:"

// CachedChecker wraps a StatusChecker with a short-TTL redis cache. Only
// positive results are cached: a completed advance payment never un-completes,
// while "not paid yet" must stay fresh.
type CachedChecker struct {
	next   StatusChecker
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedChecker creates a CachedChecker around next.
func NewCachedChecker(next StatusChecker, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedChecker {
	return &CachedChecker{next: next, client: client, ttl: ttl, logger: logger}
}

// IsComplete consults the cache before the underlying checker. Cache failures
// degrade to the underlying checker, never to an error.
func (c *CachedChecker) IsComplete(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	key := cacheKeyPrefix + bookingID.String()

	val, err := c.client.Get(ctx, key).Result()
	if err == nil && val == "1" {
		return true, nil
	}
	if err != nil && err != redis.Nil {
		c.logger.Warn("payment cache read failed", zap.Error(err))
	}

	complete, err := c.next.IsComplete(ctx, bookingID)
	if err != nil {
		return false, err
	}

	if complete {
		if err := c.client.Set(ctx, key, "1", c.ttl).Err(); err != nil {
			c.logger.Warn("payment cache write failed", zap.Error(err))
		}
	}
	return complete, nil
}
