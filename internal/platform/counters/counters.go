package counters

import (
	"context"

	"github.com/google/uuid"
)

// Field names one counter on a resource.
type Field string

const (
	FieldRead    Field = "read"
	FieldComment Field = "comment"
	FieldLike    Field = "like"
	FieldDislike Field = "dislike"
	FieldPhoto   Field = "photo"
)

// Store is the external atomic-increment-capable counter store. The core
// only ever computes a delta and a direction; the store's increment must be
// atomic, which makes concurrent callers safe without coordination here.
type Store interface {
	// IncrBy adjusts a counter and returns the new value.
	IncrBy(ctx context.Context, kind string, id uuid.UUID, field Field, delta int64) (int64, error)
	// Value reads a counter; missing counters read as zero.
	Value(ctx context.Context, kind string, id uuid.UUID, field Field) (int64, error)
}
