package domain

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
)

// PhotoStatus is the photo wire encoding of the workflow states. Photos
// have no draft state; the numeric values are a compatibility surface and
// must not change.
type PhotoStatus int

const (
	PhotoCancel   PhotoStatus = 0
	PhotoActive   PhotoStatus = 1
	PhotoAudit    PhotoStatus = 2
	PhotoFailed   PhotoStatus = 3
	PhotoRecycled PhotoStatus = 4
)

var statusToLifecycle = map[PhotoStatus]lifecycle.Status{
	PhotoCancel:   lifecycle.StatusCancel,
	PhotoActive:   lifecycle.StatusActive,
	PhotoAudit:    lifecycle.StatusAudit,
	PhotoFailed:   lifecycle.StatusFailed,
	PhotoRecycled: lifecycle.StatusRecycled,
}

var lifecycleToStatus = map[lifecycle.Status]PhotoStatus{
	lifecycle.StatusCancel:   PhotoCancel,
	lifecycle.StatusActive:   PhotoActive,
	lifecycle.StatusAudit:    PhotoAudit,
	lifecycle.StatusFailed:   PhotoFailed,
	lifecycle.StatusRecycled: PhotoRecycled,
}

// IsValid checks if the status is in the photo enum.
func (s PhotoStatus) IsValid() bool {
	_, ok := statusToLifecycle[s]
	return ok
}

// Lifecycle maps the wire code onto the symbolic workflow state.
func (s PhotoStatus) Lifecycle() lifecycle.Status {
	return statusToLifecycle[s]
}

// FromLifecycle maps a symbolic workflow state onto the photo wire code.
func FromLifecycle(st lifecycle.Status) PhotoStatus {
	return lifecycleToStatus[st]
}

// ParseStatus validates a raw wire code.
func ParseStatus(raw int) (PhotoStatus, error) {
	s := PhotoStatus(raw)
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatusCode, raw)
	}
	return s, nil
}

// MaxTitleLength bounds a photo title.
const MaxTitleLength = 200

// Validation errors
var (
	ErrInvalidTitle      = errors.New("title must not exceed 200 characters")
	ErrInvalidURL        = errors.New("photo URL is required and must be absolute")
	ErrInvalidAuthorID   = errors.New("author ID is required")
	ErrInvalidStatusCode = errors.New("invalid photo status code")
	ErrInvalidReadLevel  = errors.New("read level cannot be negative")
)

// Photo is an image resource, optionally grouped into an album and
// optionally scoped to a section.
type Photo struct {
	ID          uuid.UUID
	Title       string
	URL         string
	Description string
	AuthorID    uuid.UUID
	AlbumID     *uuid.UUID
	SectionID   *uuid.UUID
	Status      PhotoStatus
	Privacy     lifecycle.Privacy
	ReadLevel   int

	ReadCount    int64
	LikeCount    int64
	DislikeCount int64

	EditorID  *uuid.UUID
	EditedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPhoto creates a photo with validation. The workflow status is
// assigned afterwards by the status machine, never here.
func NewPhoto(title, rawURL, description string, authorID uuid.UUID, albumID, sectionID *uuid.UUID, privacy lifecycle.Privacy, readLevel int) (*Photo, error) {
	if len(title) > MaxTitleLength {
		return nil, ErrInvalidTitle
	}
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	if authorID == uuid.Nil {
		return nil, ErrInvalidAuthorID
	}
	if !privacy.IsValid() {
		return nil, fmt.Errorf("invalid privacy code: %d", privacy)
	}
	if readLevel < 0 {
		return nil, ErrInvalidReadLevel
	}

	now := time.Now()
	return &Photo{
		ID:          uuid.New(),
		Title:       title,
		URL:         rawURL,
		Description: description,
		AuthorID:    authorID,
		AlbumID:     albumID,
		SectionID:   sectionID,
		Privacy:     privacy,
		ReadLevel:   readLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateDetails replaces the caption fields and records who edited it and
// when. The URL is immutable after upload.
func (p *Photo) UpdateDetails(title, description string, editorID uuid.UUID) error {
	if len(title) > MaxTitleLength {
		return ErrInvalidTitle
	}

	now := time.Now()
	p.Title = title
	p.Description = description
	p.EditorID = &editorID
	p.EditedAt = &now
	p.UpdatedAt = now
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return ErrInvalidURL
	}
	return nil
}
