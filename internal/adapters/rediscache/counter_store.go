package rediscache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
)

// CounterStore keeps resource counters in Redis hashes, one hash per
// resource. INCRBY is atomic, which is the property the callers rely on.
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore creates a Redis-backed counter store.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// IncrBy adjusts a counter and returns the new value.
func (s *CounterStore) IncrBy(ctx context.Context, kind string, id uuid.UUID, field counters.Field, delta int64) (int64, error) {
	n, err := s.client.HIncrBy(ctx, counterKey(kind, id), string(field), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("CounterStore.IncrBy: %w", err)
	}
	return n, nil
}

// Value reads a counter; missing counters read as zero.
func (s *CounterStore) Value(ctx context.Context, kind string, id uuid.UUID, field counters.Field) (int64, error) {
	n, err := s.client.HGet(ctx, counterKey(kind, id), string(field)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("CounterStore.Value: %w", err)
	}
	return n, nil
}

func counterKey(kind string, id uuid.UUID) string {
	return "counters:" + kind + ":" + id.String()
}
