// Package cache provides a Redis read-through layer in front of slow-changing
// reference data. Vehicle categories are consulted on every booking creation
// but edited rarely, so a short TTL keeps the hot path off Postgres without a
// meaningful staleness risk.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// CategoryCache is a read-through cache over repo.CategoryRepo.
// A nil client degrades to a plain pass-through, so callers can wire it
// unconditionally and let configuration decide whether Redis is in play.
// Cache errors are logged and treated as misses — Redis being down must never
// fail a booking creation.
type CategoryCache struct {
	client *redis.Client
	repo   repo.CategoryRepo
	ttl    time.Duration
	log    *slog.Logger
}

// NewCategoryCache wraps repo with a Redis read-through using the given TTL.
func NewCategoryCache(client *redis.Client, r repo.CategoryRepo, ttl time.Duration, log *slog.Logger) *CategoryCache {
	return &CategoryCache{client: client, repo: r, ttl: ttl, log: log}
}

// GetByID returns the category from cache when present, falling back to the
// repo and populating the cache on a miss.
func (c *CategoryCache) GetByID(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error) {
	if c.client == nil {
		return c.repo.GetByID(ctx, id)
	}

	key := categoryKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cat domain.VehicleCategory
		if err := json.Unmarshal(data, &cat); err == nil {
			return cat, nil
		}
		// Unreadable entry: fall through and overwrite it.
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("category cache read", "error", err)
	}

	cat, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return domain.VehicleCategory{}, err
	}

	if payload, err := json.Marshal(cat); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("category cache write", "error", err)
		}
	}
	return cat, nil
}

// List always goes to the repo; the listing is an admin-side call and not on
// the booking hot path.
func (c *CategoryCache) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	return c.repo.List(ctx)
}

func categoryKey(id uuid.UUID) string {
	return fmt.Sprintf("cache:category:%s", id)
}

var _ repo.CategoryRepo = (*CategoryCache)(nil)
