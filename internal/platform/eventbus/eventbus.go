package eventbus

import "context"

// Topic names an event stream, e.g. "comments.status_changed".
type Topic string

// Event is a message on the bus. The reply channels are populated by
// Request only.
type Event struct {
	Topic   Topic
	Payload any

	ReplyChannel chan Event
	ErrorChannel chan error
}

// Handler processes one delivered event.
type Handler func(ctx context.Context, event Event) error
