package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/articles/application"
	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

type recordedIncr struct {
	kind  string
	id    uuid.UUID
	field counters.Field
	delta int64
}

// signalStore records every increment and signals it on a channel so tests
// can wait for the bus's asynchronous dispatch without sleeping.
type signalStore struct {
	incrs chan recordedIncr
}

func newSignalStore() *signalStore {
	return &signalStore{incrs: make(chan recordedIncr, 8)}
}

func (s *signalStore) IncrBy(ctx context.Context, kind string, id uuid.UUID, field counters.Field, delta int64) (int64, error) {
	s.incrs <- recordedIncr{kind: kind, id: id, field: field, delta: delta}
	return delta, nil
}

func (s *signalStore) Value(ctx context.Context, kind string, id uuid.UUID, field counters.Field) (int64, error) {
	return 0, nil
}

func (s *signalStore) wait(t *testing.T) recordedIncr {
	t.Helper()
	select {
	case r := <-s.incrs:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no counter increment observed")
		return recordedIncr{}
	}
}

func (s *signalStore) assertNone(t *testing.T) {
	t.Helper()
	select {
	case r := <-s.incrs:
		t.Fatalf("unexpected counter increment: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCommentCounter_AppliesDelta(t *testing.T) {
	log := logger.NewBootstrapLogger()
	bus := eventbus.NewBus(log)
	store := newSignalStore()
	application.NewCommentCounter(bus, store, log)

	articleID := uuid.New()
	bus.Publish(context.Background(), eventbus.Event{
		Topic: events.CommentStatusChangedTopic,
		Payload: events.CommentStatusChangedEvent{
			CommentID:   uuid.New(),
			ArticleID:   articleID,
			ActorID:     uuid.New(),
			ActiveDelta: 1,
			OccurredAt:  time.Now(),
		},
	})

	got := store.wait(t)
	assert.Equal(t, "article", got.kind)
	assert.Equal(t, articleID, got.id)
	assert.Equal(t, counters.FieldComment, got.field)
	assert.Equal(t, int64(1), got.delta)
}

func TestCommentCounter_IgnoresZeroDelta(t *testing.T) {
	log := logger.NewBootstrapLogger()
	bus := eventbus.NewBus(log)
	store := newSignalStore()
	application.NewCommentCounter(bus, store, log)

	bus.Publish(context.Background(), eventbus.Event{
		Topic: events.CommentStatusChangedTopic,
		Payload: events.CommentStatusChangedEvent{
			CommentID:   uuid.New(),
			ArticleID:   uuid.New(),
			ActorID:     uuid.New(),
			ActiveDelta: 0,
			OccurredAt:  time.Now(),
		},
	})

	store.assertNone(t)
}

func TestCommentCounter_CancellationDecrements(t *testing.T) {
	log := logger.NewBootstrapLogger()
	bus := eventbus.NewBus(log)
	store := newSignalStore()
	application.NewCommentCounter(bus, store, log)

	articleID := uuid.New()
	bus.Publish(context.Background(), eventbus.Event{
		Topic: events.CommentStatusChangedTopic,
		Payload: events.CommentStatusChangedEvent{
			CommentID:   uuid.New(),
			ArticleID:   articleID,
			ActorID:     uuid.New(),
			ActiveDelta: -1,
			OccurredAt:  time.Now(),
		},
	})

	got := store.wait(t)
	require.Equal(t, articleID, got.id)
	assert.Equal(t, int64(-1), got.delta)
}
