package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
)

// capturingLogger collects error log lines so handler failures can be
// asserted on.
type capturingLogger struct {
	mu     sync.Mutex
	errMsg []string
}

func (l *capturingLogger) Debug(ctx context.Context, msg string, kv ...any) {}
func (l *capturingLogger) Info(ctx context.Context, msg string, kv ...any)  {}
func (l *capturingLogger) Warn(ctx context.Context, msg string, kv ...any)  {}
func (l *capturingLogger) Error(ctx context.Context, msg string, kv ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errMsg = append(l.errMsg, msg)
}

func (l *capturingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errMsg)
}

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	received := make(chan events.CommentStatusChangedEvent, 2)
	record := func(ctx context.Context, event eventbus.Event) error {
		received <- event.Payload.(events.CommentStatusChangedEvent)
		return nil
	}
	bus.Subscribe(events.CommentStatusChangedTopic, record)
	bus.Subscribe(events.CommentStatusChangedTopic, record)

	payload := events.CommentStatusChangedEvent{
		CommentID:   uuid.New(),
		ArticleID:   uuid.New(),
		ActiveDelta: 1,
		OccurredAt:  time.Now(),
	}
	bus.Publish(context.Background(), eventbus.Event{
		Topic:   events.CommentStatusChangedTopic,
		Payload: payload,
	})

	for i := 0; i < 2; i++ {
		select {
		case got := <-received:
			assert.Equal(t, payload.CommentID, got.CommentID)
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

func TestPublish_NoSubscribersIsSilent(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	bus.Publish(context.Background(), eventbus.Event{
		Topic:   eventbus.Topic("nobody.listens"),
		Payload: struct{}{},
	})

	assert.Zero(t, log.errorCount())
}

func TestPublish_HandlerFailureIsLoggedNotPropagated(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	done := make(chan struct{})
	bus.Subscribe(events.PhotoStatusChangedTopic, func(ctx context.Context, event eventbus.Event) error {
		defer close(done)
		return errors.New("store unavailable")
	})

	bus.Publish(context.Background(), eventbus.Event{
		Topic:   events.PhotoStatusChangedTopic,
		Payload: events.PhotoStatusChangedEvent{PhotoID: uuid.New()},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
	// The error surfaces in the log only; dispatch keeps going.
	require.Eventually(t, func() bool { return log.errorCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestRequest_RoundTrip(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	topic := eventbus.Topic("articles.lookup")
	articleID := uuid.New()
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		id := event.Payload.(uuid.UUID)
		event.ReplyChannel <- eventbus.Event{Payload: id.String()}
		return nil
	})

	reply, err := bus.Request(context.Background(), eventbus.Event{
		Topic:   topic,
		Payload: articleID,
	})
	require.NoError(t, err)
	assert.Equal(t, articleID.String(), reply.Payload)
}

func TestRequest_NoHandlerRegistered(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	_, err := bus.Request(context.Background(), eventbus.Event{
		Topic: eventbus.Topic("missing.topic"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.topic")
}

func TestRequest_HandlerReportsError(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	topic := eventbus.Topic("articles.lookup")
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		err := errors.New("article not found")
		event.ErrorChannel <- err
		return err
	})

	_, err := bus.Request(context.Background(), eventbus.Event{Topic: topic})
	require.EqualError(t, err, "article not found")
}

func TestRequest_ContextDeadline(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	topic := eventbus.Topic("articles.slow")
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		// Never replies.
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := bus.Request(ctx, eventbus.Event{Topic: topic})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	log := &capturingLogger{}
	bus := eventbus.NewBus(log)

	topic := events.ArticleStatusChangedTopic
	var handled sync.WaitGroup
	handled.Add(16)
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		handled.Done()
		return nil
	})

	var publishers sync.WaitGroup
	for i := 0; i < 16; i++ {
		publishers.Add(1)
		go func() {
			defer publishers.Done()
			bus.Publish(context.Background(), eventbus.Event{
				Topic:   topic,
				Payload: events.ArticleStatusChangedEvent{ArticleID: uuid.New()},
			})
		}()
	}
	publishers.Wait()

	done := make(chan struct{})
	go func() { handled.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not every published event was handled")
	}
}
