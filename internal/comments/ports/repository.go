package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/comments/domain"
)

// CommentRepository is the persistence port for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListByArticle returns all comments on an article regardless of
	// status; visibility filtering happens in the service.
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]*domain.Comment, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Comment, error)
}
