package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/articles/domain"
)

// ArticleRepository is the persistence port for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	// ListBySection returns all articles in a section regardless of status;
	// visibility filtering happens in the service.
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*domain.Article, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Article, error)

	// CountByAuthorSince supports the section max-articles policy checks.
	CountByAuthorSince(ctx context.Context, authorID, sectionID uuid.UUID, sinceHours int) (int64, error)
}
