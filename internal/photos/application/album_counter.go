package application

import (
	"context"
	"fmt"

	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// AlbumCounter keeps the per-album photo count in step with photo status
// transitions. Each transition event carries its delta exactly once.
type AlbumCounter struct {
	counters counters.Store
	logger   logger.Logger
}

// NewAlbumCounter creates the subscriber and registers it on the bus.
func NewAlbumCounter(bus *eventbus.Bus, counterStore counters.Store, logger logger.Logger) *AlbumCounter {
	c := &AlbumCounter{counters: counterStore, logger: logger}
	bus.Subscribe(events.PhotoStatusChangedTopic, c.handle)
	return c
}

func (c *AlbumCounter) handle(ctx context.Context, event eventbus.Event) error {
	payload, ok := event.Payload.(events.PhotoStatusChangedEvent)
	if !ok {
		return fmt.Errorf("AlbumCounter: unexpected payload %T", event.Payload)
	}
	if payload.AlbumID == nil || payload.ActiveDelta == 0 {
		return nil
	}

	if _, err := c.counters.IncrBy(ctx, "album", *payload.AlbumID, counters.FieldPhoto, payload.ActiveDelta); err != nil {
		c.logger.Error(ctx, "failed to adjust album photo count",
			"album_id", *payload.AlbumID,
			"delta", payload.ActiveDelta,
			"error", err,
		)
		return err
	}
	return nil
}
