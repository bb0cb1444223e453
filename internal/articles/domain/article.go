package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/platform/validator"
)

// ArticleStatus is the article wire encoding of the workflow states. The
// numeric codes are a compatibility surface and must not change.
type ArticleStatus int

const (
	ArticleCancel   ArticleStatus = 0
	ArticleActive   ArticleStatus = 1
	ArticleDraft    ArticleStatus = 2
	ArticleAudit    ArticleStatus = 3
	ArticleFailed   ArticleStatus = 4
	ArticleRecycled ArticleStatus = 5
)

var statusToLifecycle = map[ArticleStatus]lifecycle.Status{
	ArticleCancel:   lifecycle.StatusCancel,
	ArticleActive:   lifecycle.StatusActive,
	ArticleDraft:    lifecycle.StatusDraft,
	ArticleAudit:    lifecycle.StatusAudit,
	ArticleFailed:   lifecycle.StatusFailed,
	ArticleRecycled: lifecycle.StatusRecycled,
}

var lifecycleToStatus = map[lifecycle.Status]ArticleStatus{
	lifecycle.StatusCancel:   ArticleCancel,
	lifecycle.StatusActive:   ArticleActive,
	lifecycle.StatusDraft:    ArticleDraft,
	lifecycle.StatusAudit:    ArticleAudit,
	lifecycle.StatusFailed:   ArticleFailed,
	lifecycle.StatusRecycled: ArticleRecycled,
}

// IsValid checks if the status is in the article enum.
func (s ArticleStatus) IsValid() bool {
	_, ok := statusToLifecycle[s]
	return ok
}

// Lifecycle maps the wire code onto the symbolic workflow state.
func (s ArticleStatus) Lifecycle() lifecycle.Status {
	return statusToLifecycle[s]
}

// FromLifecycle maps a symbolic workflow state onto the article wire code.
func FromLifecycle(st lifecycle.Status) ArticleStatus {
	return lifecycleToStatus[st]
}

// ParseStatus validates a raw wire code.
func ParseStatus(raw int) (ArticleStatus, error) {
	s := ArticleStatus(raw)
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatusCode, raw)
	}
	return s, nil
}

// Business rule constants
const (
	MaxTitleLength = 200
	MaxSlugLength  = 250
)

// Validation errors
var (
	ErrInvalidTitle      = errors.New("title is required and must not exceed 200 characters")
	ErrInvalidSlug       = errors.New("slug is invalid or too long")
	ErrInvalidContent    = errors.New("content is required")
	ErrInvalidAuthorID   = errors.New("author ID is required")
	ErrInvalidStatusCode = errors.New("invalid article status code")
	ErrInvalidReadLevel  = errors.New("read level cannot be negative")
)

// Article is a long-form content resource, optionally scoped to a section.
type Article struct {
	ID        uuid.UUID
	Title     string
	Slug      string
	Content   string // sanitized HTML
	AuthorID  uuid.UUID
	SectionID *uuid.UUID
	Status    ArticleStatus
	Privacy   lifecycle.Privacy
	ReadLevel int

	ReadCount    int64
	CommentCount int64
	LikeCount    int64
	DislikeCount int64

	EditorID  *uuid.UUID
	EditedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewArticle creates an article with validation. The workflow status is
// assigned afterwards by the status machine, never here.
func NewArticle(title, content string, authorID uuid.UUID, sectionID *uuid.UUID, privacy lifecycle.Privacy, readLevel int) (*Article, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, ErrInvalidContent
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

	slug := validator.GenerateSlug(title, MaxSlugLength)
	if err := validator.ValidateSlugFormat(slug, MaxSlugLength); err != nil {
		return nil, ErrInvalidSlug
	}

	now := time.Now()
	return &Article{
		ID:        uuid.New(),
		Title:     title,
		Slug:      slug,
		Content:   content,
		AuthorID:  authorID,
		SectionID: sectionID,
		Privacy:   privacy,
		ReadLevel: readLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateContent replaces the payload and records who edited it and when.
func (a *Article) UpdateContent(title, content string, editorID uuid.UUID) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if content == "" {
		return ErrInvalidContent
	}

	now := time.Now()
	a.Title = title
	a.Content = content
	a.EditorID = &editorID
	a.EditedAt = &now
	a.UpdatedAt = now
	return nil
}

// UpdateSlug replaces the slug after a uniqueness check by the service.
func (a *Article) UpdateSlug(slug string) error {
	if err := validator.ValidateSlugFormat(slug, MaxSlugLength); err != nil {
		return ErrInvalidSlug
	}
	a.Slug = slug
	a.UpdatedAt = time.Now()
	return nil
}

func validateTitle(title string) error {
	if title == "" || len(title) > MaxTitleLength {
		return ErrInvalidTitle
	}
	return nil
}
