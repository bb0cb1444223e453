package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

const managerKeyPrefix = "section:managers:"

// ManagerCache stores derived manager sets in Redis, keyed by section id.
// Entries have no TTL; the mutating path rewrites them before returning, so
// staleness is bounded by the write-through window.
type ManagerCache struct {
	client *redis.Client
}

// NewManagerCache creates a Redis-backed manager cache.
func NewManagerCache(client *redis.Client) *ManagerCache {
	return &ManagerCache{client: client}
}

// Get reads a cached manager set. The second return reports a hit.
func (c *ManagerCache) Get(ctx context.Context, sectionID uuid.UUID) (domain.Managers, bool, error) {
	raw, err := c.client.Get(ctx, managerKey(sectionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Managers{}, false, nil
		}
		return domain.Managers{}, false, fmt.Errorf("ManagerCache.Get: %w", err)
	}

	var managers domain.Managers
	if err := json.Unmarshal(raw, &managers); err != nil {
		return domain.Managers{}, false, fmt.Errorf("ManagerCache.Get: decode: %w", err)
	}
	return managers, true, nil
}

// Set writes a manager set.
func (c *ManagerCache) Set(ctx context.Context, sectionID uuid.UUID, managers domain.Managers) error {
	raw, err := json.Marshal(managers)
	if err != nil {
		return fmt.Errorf("ManagerCache.Set: encode: %w", err)
	}
	if err := c.client.Set(ctx, managerKey(sectionID), raw, 0).Err(); err != nil {
		return fmt.Errorf("ManagerCache.Set: %w", err)
	}
	return nil
}

// Invalidate drops a section's entry.
func (c *ManagerCache) Invalidate(ctx context.Context, sectionID uuid.UUID) error {
	if err := c.client.Del(ctx, managerKey(sectionID)).Err(); err != nil {
		return fmt.Errorf("ManagerCache.Invalidate: %w", err)
	}
	return nil
}

func managerKey(sectionID uuid.UUID) string {
	return managerKeyPrefix + sectionID.String()
}
