package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdigris-dev/atrium/backend/internal/articles/domain"
	"github.com/verdigris-dev/atrium/backend/internal/articles/ports"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
)

var articleColumns = []string{
	"id", "title", "slug", "content", "author_id", "section_id",
	"status", "privacy", "read_level",
	"read_count", "comment_count", "like_count", "dislike_count",
	"editor_id", "edited_at", "created_at", "updated_at",
}

// ArticleRepository implements the articles ArticleRepository interface
// using PostgreSQL
type ArticleRepository struct {
	postgres.BaseRepository
}

// NewArticleRepository creates a new PostgreSQL article repository
func NewArticleRepository(db *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *ArticleRepository) WithTx(tx pgx.Tx) ports.ArticleRepository {
	return &ArticleRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a new article into the database
func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	query, args, err := r.SB.
		Insert("articles").
		Columns(articleColumns...).
		Values(
			pgtype.UUID{Bytes: article.ID, Valid: true},
			article.Title,
			article.Slug,
			article.Content,
			pgtype.UUID{Bytes: article.AuthorID, Valid: true},
			optionalUUID(article.SectionID),
			int(article.Status),
			int(article.Privacy),
			article.ReadLevel,
			article.ReadCount,
			article.CommentCount,
			article.LikeCount,
			article.DislikeCount,
			optionalUUID(article.EditorID),
			optionalTimestamptz(article.EditedAt),
			pgtype.Timestamptz{Time: article.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: article.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("ArticleRepository.Create: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ArticleRepository.Create: %w", err)
	}
	return nil
}

// Update updates an existing article in the database
func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	query, args, err := r.SB.
		Update("articles").
		Set("title", article.Title).
		Set("slug", article.Slug).
		Set("content", article.Content).
		Set("section_id", optionalUUID(article.SectionID)).
		Set("status", int(article.Status)).
		Set("privacy", int(article.Privacy)).
		Set("read_level", article.ReadLevel).
		Set("editor_id", optionalUUID(article.EditorID)).
		Set("edited_at", optionalTimestamptz(article.EditedAt)).
		Set("updated_at", pgtype.Timestamptz{Time: article.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: article.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ArticleRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ArticleRepository.Update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ArticleRepository.Update: article %s not found", article.ID)
	}
	return nil
}

// Delete removes an article from the database
func (r *ArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("articles").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ArticleRepository.Delete: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ArticleRepository.Delete: %w", err)
	}
	return nil
}

// GetByID retrieves an article by its ID
func (r *ArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	return r.getArticle(ctx, sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}})
}

// GetBySlug retrieves an article by its URL slug
func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.getArticle(ctx, sq.Eq{"slug": slug})
}

// SlugExists checks slug uniqueness, optionally excluding one article
func (r *ArticleRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	qb := r.SB.
		Select("1").
		From("articles").
		Where(sq.Eq{"slug": slug})
	if excludeID != nil {
		qb = qb.Where(sq.NotEq{"id": pgtype.UUID{Bytes: *excludeID, Valid: true}})
	}

	query, args, err := qb.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("ArticleRepository.SlugExists: build query: %w", err)
	}

	var one int
	err = r.DB.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ArticleRepository.SlugExists: %w", err)
	}
	return true, nil
}

// ListBySection retrieves all articles in a section
func (r *ArticleRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*domain.Article, error) {
	return r.listArticles(ctx, sq.Eq{"section_id": pgtype.UUID{Bytes: sectionID, Valid: true}})
}

// ListByAuthor retrieves all articles by one author
func (r *ArticleRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Article, error) {
	return r.listArticles(ctx, sq.Eq{"author_id": pgtype.UUID{Bytes: authorID, Valid: true}})
}

// CountByAuthorSince counts an author's recent non-cancelled articles in a
// section, for quota checks
func (r *ArticleRepository) CountByAuthorSince(ctx context.Context, authorID, sectionID uuid.UUID, sinceHours int) (int64, error) {
	query, args, err := r.SB.
		Select("COUNT(*)").
		From("articles").
		Where(sq.Eq{
			"author_id":  pgtype.UUID{Bytes: authorID, Valid: true},
			"section_id": pgtype.UUID{Bytes: sectionID, Valid: true},
		}).
		Where(sq.NotEq{"status": int(domain.ArticleCancel)}).
		Where(fmt.Sprintf("created_at > NOW() - INTERVAL '%d hours'", sinceHours)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ArticleRepository.CountByAuthorSince: build query: %w", err)
	}

	var count int64
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ArticleRepository.CountByAuthorSince: %w", err)
	}
	return count, nil
}

func (r *ArticleRepository) getArticle(ctx context.Context, where sq.Eq) (*domain.Article, error) {
	query, args, err := r.SB.
		Select(articleColumns...).
		From("articles").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ArticleRepository.getArticle: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ArticleRepository.getArticle: %w", err)
	}
	return article, nil
}

func (r *ArticleRepository) listArticles(ctx context.Context, where sq.Eq) ([]*domain.Article, error) {
	query, args, err := r.SB.
		Select(articleColumns...).
		From("articles").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ArticleRepository.listArticles: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ArticleRepository.listArticles: %w", err)
	}
	defer rows.Close()

	var articles []*domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ArticleRepository.listArticles: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ArticleRepository.listArticles: %w", err)
	}
	return articles, nil
}

// scanArticle scans a single article from pgx.Row
func scanArticle(row pgx.Row) (*domain.Article, error) {
	var (
		idVal      pgtype.UUID
		title      string
		slug       string
		content    string
		authorVal  pgtype.UUID
		sectionVal pgtype.UUID
		status     int
		privacy    int
		readLevel  int
		readCount  int64
		comments   int64
		likes      int64
		dislikes   int64
		editorVal  pgtype.UUID
		editedAt   pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(
		&idVal, &title, &slug, &content, &authorVal, &sectionVal,
		&status, &privacy, &readLevel,
		&readCount, &comments, &likes, &dislikes,
		&editorVal, &editedAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return &domain.Article{
		ID:           uuid.UUID(idVal.Bytes),
		Title:        title,
		Slug:         slug,
		Content:      content,
		AuthorID:     uuid.UUID(authorVal.Bytes),
		SectionID:    uuidPtr(sectionVal),
		Status:       domain.ArticleStatus(status),
		Privacy:      lifecycle.Privacy(privacy),
		ReadLevel:    readLevel,
		ReadCount:    readCount,
		CommentCount: comments,
		LikeCount:    likes,
		DislikeCount: dislikes,
		EditorID:     uuidPtr(editorVal),
		EditedAt:     timePtr(editedAt),
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}
