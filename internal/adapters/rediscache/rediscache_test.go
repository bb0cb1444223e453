package rediscache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestManagerCache_MissThenHit(t *testing.T) {
	cache := NewManagerCache(newTestClient(t))
	ctx := context.Background()
	sectionID := uuid.New()

	_, ok, err := cache.Get(ctx, sectionID)
	require.NoError(t, err)
	assert.False(t, ok)

	managers := domain.Managers{
		OwnerID:      uuid.New(),
		ModeratorIDs: []uuid.UUID{uuid.New(), uuid.New()},
		AssistantIDs: []uuid.UUID{uuid.New()},
	}
	require.NoError(t, cache.Set(ctx, sectionID, managers))

	got, ok, err := cache.Get(ctx, sectionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, managers.OwnerID, got.OwnerID)
	assert.ElementsMatch(t, managers.ModeratorIDs, got.ModeratorIDs)
	assert.ElementsMatch(t, managers.AssistantIDs, got.AssistantIDs)
}

func TestManagerCache_Invalidate(t *testing.T) {
	cache := NewManagerCache(newTestClient(t))
	ctx := context.Background()
	sectionID := uuid.New()

	require.NoError(t, cache.Set(ctx, sectionID, domain.Managers{OwnerID: uuid.New()}))
	require.NoError(t, cache.Invalidate(ctx, sectionID))

	_, ok, err := cache.Get(ctx, sectionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCounterStore_IncrAndValue(t *testing.T) {
	store := NewCounterStore(newTestClient(t))
	ctx := context.Background()
	articleID := uuid.New()

	n, err := store.Value(ctx, "article", articleID, counters.FieldComment)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = store.IncrBy(ctx, "article", articleID, counters.FieldComment, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.IncrBy(ctx, "article", articleID, counters.FieldComment, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = store.IncrBy(ctx, "article", articleID, counters.FieldRead, 5)
	require.NoError(t, err)
	n, err = store.Value(ctx, "article", articleID, counters.FieldRead)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestCounterStore_FieldsAreIndependent(t *testing.T) {
	store := NewCounterStore(newTestClient(t))
	ctx := context.Background()
	id := uuid.New()

	_, err := store.IncrBy(ctx, "album", id, counters.FieldPhoto, 3)
	require.NoError(t, err)

	n, err := store.Value(ctx, "album", id, counters.FieldLike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = store.Value(ctx, "article", id, counters.FieldPhoto)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
