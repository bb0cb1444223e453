package eventbus

import (
	"context"
	"errors"
	"sync"

	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// Bus is the in-process event dispatcher. Status transitions publish here
// and the counter subscribers consume; delivery is asynchronous and
// best-effort.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[Topic][]Handler
	logger        logger.Logger
}

func NewBus(logger logger.Logger) *Bus {
	return &Bus{
		subscriptions: make(map[Topic][]Handler),
		logger:        logger,
	}
}

// Subscribe registers a handler for a topic. Registration happens during
// wiring; it is safe but not expected after Publish traffic starts.
func (b *Bus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions[topic] = append(b.subscriptions[topic], handler)
}

// Publish dispatches the event to every subscriber of its topic, each on
// its own goroutine. Handler errors are logged and dropped; a failed
// counter update must not fail the status change that caused it.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.subscriptions[event.Topic]
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			if err := h(ctx, event); err != nil {
				b.logger.Error(ctx, "event handler failed", "topic", event.Topic, "error", err)
			}
		}(handler)
	}
}

// Request dispatches to the first subscriber and waits for a reply on the
// event's reply channel, an error, or context cancellation.
func (b *Bus) Request(ctx context.Context, event Event) (Event, error) {
	b.mu.RLock()
	handlers := b.subscriptions[event.Topic]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return Event{}, errors.New("no handler registered for request topic: " + string(event.Topic))
	}

	event.ReplyChannel = make(chan Event, 1)
	event.ErrorChannel = make(chan error, 1)

	go func() {
		// The handler reports its outcome through the channels.
		_ = handlers[0](ctx, event)
	}()

	select {
	case reply := <-event.ReplyChannel:
		return reply, nil
	case err := <-event.ErrorChannel:
		return Event{}, err
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}
