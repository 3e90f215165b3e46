package featureflags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"route-optimization-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisCachedFlags is a read-through cache in front of another flag service.
//
// Redis failures are logged and the lookup falls through to the wrapped
// service. Concurrent misses for the same key share one lookup.
type RedisCachedFlags struct {
	next   ports.FeatureFlagService
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewRedisCachedFlags(
	next ports.FeatureFlagService,
	rdb *redis.Client,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisCachedFlags {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCachedFlags{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(officeID int, flag string) string {
	return fmt.Sprintf("feature_flag:%d:%s", officeID, flag)
}

func (c *RedisCachedFlags) IsFeatureEnabledForOffice(ctx context.Context, officeID int, flag string) (bool, error) {
	key := cacheKey(officeID, flag)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "flag cache read failed", "key", key, "err", err)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		enabled, err := c.next.IsFeatureEnabledForOffice(ctx, officeID, flag)
		if err != nil {
			return false, err
		}

		value := "0"
		if enabled {
			value = "1"
		}
		if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "flag cache write failed", "key", key, "err", err)
		}
		return enabled, nil
	})
	if err != nil {
		return false, fmt.Errorf("cached flag %q office_id=%d: %w", flag, officeID, err)
	}
	return v.(bool), nil
}

// Invalidate drops the cached value so the next lookup reads the store.
// Invalidating the AllOffices row drops the flag for every office, since each
// office's cached value may come from the default.
func (c *RedisCachedFlags) Invalidate(ctx context.Context, officeID int, flag string) error {
	keys := []string{cacheKey(officeID, flag)}
	if officeID == AllOffices {
		var err error
		keys, err = c.keysForFlag(ctx, flag)
		if err != nil {
			return fmt.Errorf("invalidate flag %q office_id=%d: %w", flag, officeID, err)
		}
		if len(keys) == 0 {
			return nil
		}
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate flag %q office_id=%d: %w", flag, officeID, err)
	}
	return nil
}

func (c *RedisCachedFlags) keysForFlag(ctx context.Context, flag string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("feature_flag:*:%s", flag), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan cached keys: %w", err)
	}
	return keys, nil
}

// SetFlag writes through to the wrapped store and invalidates the cached
// values the write affects.
func (c *RedisCachedFlags) SetFlag(ctx context.Context, officeID int, flag string, enabled bool) error {
	store, ok := c.next.(Upserter)
	if !ok {
		return fmt.Errorf("set flag %q office_id=%d: wrapped flag service is read-only", flag, officeID)
	}
	if err := store.SetFlag(ctx, officeID, flag, enabled); err != nil {
		return err
	}
	return c.Invalidate(ctx, officeID, flag)
}
