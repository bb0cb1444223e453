package application

import (
	"context"
	"fmt"

	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// CommentCounter keeps the per-article comment count in step with comment
// status transitions. Each transition event carries its delta exactly once,
// so applying it here stays idempotent per transition.
type CommentCounter struct {
	counters counters.Store
	logger   logger.Logger
}

// NewCommentCounter creates the subscriber and registers it on the bus.
func NewCommentCounter(bus *eventbus.Bus, counterStore counters.Store, logger logger.Logger) *CommentCounter {
	c := &CommentCounter{counters: counterStore, logger: logger}
	bus.Subscribe(events.CommentStatusChangedTopic, c.handle)
	return c
}

func (c *CommentCounter) handle(ctx context.Context, event eventbus.Event) error {
	payload, ok := event.Payload.(events.CommentStatusChangedEvent)
	if !ok {
		return fmt.Errorf("CommentCounter: unexpected payload %T", event.Payload)
	}
	if payload.ActiveDelta == 0 {
		return nil
	}

	if _, err := c.counters.IncrBy(ctx, "article", payload.ArticleID, counters.FieldComment, payload.ActiveDelta); err != nil {
		c.logger.Error(ctx, "failed to adjust comment count",
			"article_id", payload.ArticleID,
			"delta", payload.ActiveDelta,
			"error", err,
		)
		return err
	}
	return nil
}
