package region

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/logger"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "region:"

// Cached serves region lookups from Redis, falling back to the wrapped
// repository on a miss. Redis failures degrade to uncached reads.
type Cached struct {
	next   Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next with a Redis read-through cache.
func NewCached(next Repository, client *redis.Client, ttl time.Duration, log *slog.Logger) *Cached {
	if log == nil {
		log = logger.Discard()
	}
	return &Cached{next: next, client: client, ttl: ttl, logger: log}
}

func (c *Cached) GetByID(ctx context.Context, id int) (*domain.Region, error) {
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var reg domain.Region
		if err := json.Unmarshal(data, &reg); err == nil {
			return &reg, nil
		}
		c.logger.WarnContext(ctx, "region cache: corrupt entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "region cache: get", slog.String("key", key), slog.Any("error", err))
	}

	reg, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(reg); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "region cache: set", slog.String("key", key), slog.Any("error", err))
		}
	}
	return reg, nil
}

func (c *Cached) ListByCountry(ctx context.Context, countryID string) ([]domain.Region, error) {
	return c.next.ListByCountry(ctx, countryID)
}

// Invalidate evicts the given regions from the cache.
func (c *Cached) Invalidate(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del regions: %w", err)
	}
	return nil
}

func cacheKey(id int) string {
	return keyPrefix + strconv.Itoa(id)
}
