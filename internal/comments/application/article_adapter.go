package application

import (
	"context"

	"github.com/google/uuid"
	articleports "github.com/verdigris-dev/atrium/backend/internal/articles/ports"
	"github.com/verdigris-dev/atrium/backend/internal/comments/ports"
)

// ArticleSourceAdapter adapts the articles repository to the comments
// module's ArticleSource port. It reads the raw row; visibility of the
// parent is the comments service's concern.
type ArticleSourceAdapter struct {
	repo articleports.ArticleRepository
}

// NewArticleSourceAdapter creates an adapter over the articles repository.
func NewArticleSourceAdapter(repo articleports.ArticleRepository) *ArticleSourceAdapter {
	return &ArticleSourceAdapter{repo: repo}
}

func (a *ArticleSourceAdapter) GetArticleRef(ctx context.Context, articleID uuid.UUID) (*ports.ArticleRef, error) {
	article, err := a.repo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, nil
	}
	return &ports.ArticleRef{
		ID:        article.ID,
		AuthorID:  article.AuthorID,
		SectionID: article.SectionID,
		Status:    article.Status.Lifecycle(),
		Privacy:   article.Privacy,
		ReadLevel: article.ReadLevel,
	}, nil
}
