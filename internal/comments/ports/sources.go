package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// ArticleRef is the slice of an article the comments module needs: enough
// to attach a comment and to check the parent is open for replies.
type ArticleRef struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	SectionID *uuid.UUID
	Status    lifecycle.Status
	Privacy   lifecycle.Privacy
	ReadLevel int
}

// ArticleSource resolves parent articles for comments.
type ArticleSource interface {
	GetArticleRef(ctx context.Context, articleID uuid.UUID) (*ArticleRef, error)
}

// SectionSource resolves section references on comments.
// Satisfied by the sections application service.
type SectionSource interface {
	GetSection(ctx context.Context, sectionID uuid.UUID) (*sections.Section, error)
}
