package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// Redis key prefixes for cached availability
	RedisAvailabilityGenPrefix  = "availability:gen:"
	RedisAvailabilityDataPrefix = "availability:data:"

	// Timeout for individual Redis operations
	redisCacheTimeout = 2 * time.Second

	// Upper bound for one shared store read on a cache miss
	availabilityLoadTimeout = 10 * time.Second

	defaultAvailabilityTTL = 30 * time.Second
)

// =============================================================================
// Types
// =============================================================================

// RedisAvailabilityCache caches availability reads per doctor and date range.
//
// Invalidation bumps a per-doctor generation counter instead of deleting data
// keys; entries written under an older generation are never read again and
// expire on their TTL. Concurrent misses for the same key share one load.
//
// Redis is advisory here: any Redis failure falls back to the loader, so the
// store stays the source of truth.
type RedisAvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	group       singleflight.Group
}

// =============================================================================
// Constructor
// =============================================================================

func NewRedisAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisAvailabilityCache {
	if ttl <= 0 {
		ttl = defaultAvailabilityTTL
	}
	return &RedisAvailabilityCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Get returns cached slots for the range, calling load on a miss.
func (c *RedisAvailabilityCache) Get(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time, load func(ctx context.Context) ([]entity.TimeSlot, error)) ([]entity.TimeSlot, error) {
	gen, err := c.generation(ctx, doctorID)
	if err != nil {
		c.log.Warnf("Availability cache unavailable for doctor %s, reading store: %+v", doctorID, err)
		return load(ctx)
	}

	key := dataKey(doctorID, gen, startDate, endDate)
	if slots, ok := c.read(ctx, key); ok {
		return slots, nil
	}

	// The shared load outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), availabilityLoadTimeout)
		defer cancel()

		slots, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.write(loadCtx, key, slots)
		return slots, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]entity.TimeSlot), nil
	}
}

// Invalidate makes every cached range of the doctor stale.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, doctorID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.redisClient.Incr(ctx, genKey(doctorID)).Err(); err != nil {
		return fmt.Errorf("bump availability generation for doctor %s: %w", doctorID, err)
	}

	c.log.Debugf("Invalidated availability cache for doctor %s", doctorID)
	return nil
}

// =============================================================================
// Private Methods
// =============================================================================

func (c *RedisAvailabilityCache) generation(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	gen, err := c.redisClient.Get(ctx, genKey(doctorID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisAvailabilityCache) read(ctx context.Context, key string) ([]entity.TimeSlot, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read availability cache key %s: %+v", key, err)
		}
		return nil, false
	}

	var slots []entity.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warnf("Discarding undecodable availability cache key %s: %+v", key, err)
		return nil, false
	}
	return slots, true
}

func (c *RedisAvailabilityCache) write(ctx context.Context, key string, slots []entity.TimeSlot) {
	payload, err := json.Marshal(slots)
	if err != nil {
		c.log.Warnf("Failed to encode availability for cache key %s: %+v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.redisClient.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write availability cache key %s: %+v", key, err)
	}
}

func genKey(doctorID uuid.UUID) string {
	return RedisAvailabilityGenPrefix + doctorID.String()
}

func dataKey(doctorID uuid.UUID, gen int64, startDate, endDate time.Time) string {
	return fmt.Sprintf("%s%s:%d:%s:%s", RedisAvailabilityDataPrefix, doctorID, gen,
		startDate.Format(entity.DateLayout), endDate.Format(entity.DateLayout))
}
