package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
)

// Event topics for content status transitions
const (
	ArticleStatusChangedTopic eventbus.Topic = "articles.status_changed"
	CommentStatusChangedTopic eventbus.Topic = "comments.status_changed"
	PhotoStatusChangedTopic   eventbus.Topic = "photos.status_changed"
)

// ArticleStatusChangedEvent is published when an article's workflow status
// changes.
type ArticleStatusChangedEvent struct {
	ArticleID  uuid.UUID
	ActorID    uuid.UUID
	SectionID  *uuid.UUID
	OldStatus  int
	NewStatus  int
	OccurredAt time.Time
}

// CommentStatusChangedEvent is published when a comment's workflow status
// changes. ActiveDelta carries the comment-count adjustment for the parent
// article: +1 entering ACTIVE, -1 leaving, 0 otherwise.
type CommentStatusChangedEvent struct {
	CommentID   uuid.UUID
	ArticleID   uuid.UUID
	ActorID     uuid.UUID
	OldStatus   int
	NewStatus   int
	ActiveDelta int64
	OccurredAt  time.Time
}

// PhotoStatusChangedEvent is published when a photo's workflow status
// changes. ActiveDelta carries the photo-count adjustment for the owning
// album, when there is one.
type PhotoStatusChangedEvent struct {
	PhotoID     uuid.UUID
	AlbumID     *uuid.UUID
	ActorID     uuid.UUID
	OldStatus   int
	NewStatus   int
	ActiveDelta int64
	OccurredAt  time.Time
}
