package rules

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Simplici0/staffquote/internal/pricing"
)

// ActiveKey holds the cached active rule set.
const ActiveKey = "rules:active"

// Cache is a read-through Redis cache over a Repository. Redis failures are
// logged and answered from the underlying repository.
type Cache struct {
	repo  Repository
	redis redis.Cmdable
	ttl   time.Duration
	log   *zap.Logger
}

func NewCache(repo Repository, client redis.Cmdable, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{repo: repo, redis: client, ttl: ttl, log: log}
}

func (c *Cache) List(ctx context.Context) ([]pricing.Rule, error) {
	val, err := c.redis.Get(ctx, ActiveKey).Bytes()
	switch {
	case err == nil:
		var cached []pricing.Rule
		decodeErr := json.Unmarshal(val, &cached)
		if decodeErr == nil {
			return cached, nil
		}
		c.log.Warn("discarding undecodable cached rule set", zap.Error(decodeErr))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("rule cache read failed", zap.Error(err))
	}

	list, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(list)
	if err != nil {
		c.log.Warn("encode rule set for cache", zap.Error(err))
		return list, nil
	}
	if err := c.redis.Set(ctx, ActiveKey, data, c.ttl).Err(); err != nil {
		c.log.Warn("rule cache write failed", zap.Error(err))
	}
	return list, nil
}

func (c *Cache) Get(ctx context.Context, id string) (pricing.Rule, error) {
	return c.repo.Get(ctx, id)
}

// Upsert writes through to the repository and drops the cached set.
func (c *Cache) Upsert(ctx context.Context, rule pricing.Rule) error {
	if err := c.repo.Upsert(ctx, rule); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// Deactivate writes through to the repository and drops the cached set.
func (c *Cache) Deactivate(ctx context.Context, id string) error {
	if err := c.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.redis.Del(ctx, ActiveKey).Err(); err != nil {
		c.log.Warn("rule cache invalidation failed", zap.Error(err))
	}
}
