package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hostelhub/service-booking/internal/application"
)

const availabilityKeyPrefix = "availability:hostel:"

// RedisAvailabilityCache stores per-hostel availability summaries in redis
// with a short TTL. Cache failures are logged and treated as misses so the
// service keeps answering from the database.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisAvailabilityCache creates a new RedisAvailabilityCache.
func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func availabilityKey(hostelID uuid.UUID) string {
	return availabilityKeyPrefix + hostelID.String()
}

// Get returns the cached summary for the hostel, if present.
func (c *RedisAvailabilityCache) Get(ctx context.Context, hostelID uuid.UUID) (*application.AvailabilityDTO, bool) {
	raw, err := c.client.Get(ctx, availabilityKey(hostelID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("availability cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var summary application.AvailabilityDTO
	if err := json.Unmarshal(raw, &summary); err != nil {
		c.logger.Warn("availability cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &summary, true
}

// Set stores the summary for the hostel.
func (c *RedisAvailabilityCache) Set(ctx context.Context, hostelID uuid.UUID, summary *application.AvailabilityDTO) {
	raw, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warn("availability cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, availabilityKey(hostelID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached summary for the hostel.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, hostelID uuid.UUID) {
	if err := c.client.Del(ctx, availabilityKey(hostelID)).Err(); err != nil {
		c.logger.Warn("availability cache invalidate failed", zap.Error(err))
	}
}
