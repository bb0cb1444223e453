package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
)

// CommentStatus is the comment wire encoding of the workflow states.
// Comments have no draft state, which shifts the codes relative to articles;
// the numeric values are a compatibility surface and must not change.
type CommentStatus int

const (
	CommentCancel   CommentStatus = 0
	CommentActive   CommentStatus = 1
	CommentAudit    CommentStatus = 2
	CommentFailed   CommentStatus = 3
	CommentRecycled CommentStatus = 4
)

var statusToLifecycle = map[CommentStatus]lifecycle.Status{
	CommentCancel:   lifecycle.StatusCancel,
	CommentActive:   lifecycle.StatusActive,
	CommentAudit:    lifecycle.StatusAudit,
	CommentFailed:   lifecycle.StatusFailed,
	CommentRecycled: lifecycle.StatusRecycled,
}

var lifecycleToStatus = map[lifecycle.Status]CommentStatus{
	lifecycle.StatusCancel:   CommentCancel,
	lifecycle.StatusActive:   CommentActive,
	lifecycle.StatusAudit:    CommentAudit,
	lifecycle.StatusFailed:   CommentFailed,
	lifecycle.StatusRecycled: CommentRecycled,
}

// IsValid checks if the status is in the comment enum.
func (s CommentStatus) IsValid() bool {
	_, ok := statusToLifecycle[s]
	return ok
}

// Lifecycle maps the wire code onto the symbolic workflow state.
func (s CommentStatus) Lifecycle() lifecycle.Status {
	return statusToLifecycle[s]
}

// FromLifecycle maps a symbolic workflow state onto the comment wire code.
func FromLifecycle(st lifecycle.Status) CommentStatus {
	return lifecycleToStatus[st]
}

// ParseStatus validates a raw wire code.
func ParseStatus(raw int) (CommentStatus, error) {
	s := CommentStatus(raw)
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatusCode, raw)
	}
	return s, nil
}

// MaxContentLength bounds a single comment body.
const MaxContentLength = 10000

// Validation errors
var (
	ErrInvalidContent    = errors.New("content is required and must not exceed 10000 characters")
	ErrInvalidAuthorID   = errors.New("author ID is required")
	ErrInvalidArticleID  = errors.New("article ID is required")
	ErrInvalidStatusCode = errors.New("invalid comment status code")
)

// Comment is a reply attached to an article. Its section reference is
// inherited from the parent article so delegated moderation applies to the
// whole thread.
type Comment struct {
	ID        uuid.UUID
	ArticleID uuid.UUID
	ParentID  *uuid.UUID // reply-to comment, nil for top-level
	Content   string     // sanitized HTML
	AuthorID  uuid.UUID
	SectionID *uuid.UUID
	Status    CommentStatus
	Privacy   lifecycle.Privacy
	ReadLevel int

	LikeCount    int64
	DislikeCount int64

	EditorID  *uuid.UUID
	EditedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComment creates a comment with validation. The workflow status is
// assigned afterwards by the status machine, never here.
func NewComment(content string, authorID, articleID uuid.UUID, parentID, sectionID *uuid.UUID) (*Comment, error) {
	if content == "" || len(content) > MaxContentLength {
		return nil, ErrInvalidContent
	}
	if authorID == uuid.Nil {
		return nil, ErrInvalidAuthorID
	}
	if articleID == uuid.Nil {
		return nil, ErrInvalidArticleID
	}

	now := time.Now()
	return &Comment{
		ID:        uuid.New(),
		ArticleID: articleID,
		ParentID:  parentID,
		Content:   content,
		AuthorID:  authorID,
		SectionID: sectionID,
		Privacy:   lifecycle.PrivacyPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateContent replaces the body and records who edited it and when.
func (c *Comment) UpdateContent(content string, editorID uuid.UUID) error {
	if content == "" || len(content) > MaxContentLength {
		return ErrInvalidContent
	}

	now := time.Now()
	c.Content = content
	c.EditorID = &editorID
	c.EditedAt = &now
	c.UpdatedAt = now
	return nil
}
