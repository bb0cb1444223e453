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
	"github.com/verdigris-dev/atrium/backend/internal/comments/domain"
	"github.com/verdigris-dev/atrium/backend/internal/comments/ports"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
)

var commentColumns = []string{
	"id", "article_id", "parent_id", "content", "author_id", "section_id",
	"status", "privacy", "read_level", "like_count", "dislike_count",
	"editor_id", "edited_at", "created_at", "updated_at",
}

// CommentRepository implements the comments CommentRepository interface
// using PostgreSQL
type CommentRepository struct {
	postgres.BaseRepository
}

// NewCommentRepository creates a new PostgreSQL comment repository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *CommentRepository) WithTx(tx pgx.Tx) ports.CommentRepository {
	return &CommentRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a new comment into the database
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query, args, err := r.SB.
		Insert("comments").
		Columns(commentColumns...).
		Values(
			pgtype.UUID{Bytes: comment.ID, Valid: true},
			pgtype.UUID{Bytes: comment.ArticleID, Valid: true},
			optionalUUID(comment.ParentID),
			comment.Content,
			pgtype.UUID{Bytes: comment.AuthorID, Valid: true},
			optionalUUID(comment.SectionID),
			int(comment.Status),
			int(comment.Privacy),
			comment.ReadLevel,
			comment.LikeCount,
			comment.DislikeCount,
			optionalUUID(comment.EditorID),
			optionalTimestamptz(comment.EditedAt),
			pgtype.Timestamptz{Time: comment.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: comment.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("CommentRepository.Create: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("CommentRepository.Create: %w", err)
	}
	return nil
}

// Update updates an existing comment in the database
func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query, args, err := r.SB.
		Update("comments").
		Set("content", comment.Content).
		Set("status", int(comment.Status)).
		Set("privacy", int(comment.Privacy)).
		Set("read_level", comment.ReadLevel).
		Set("editor_id", optionalUUID(comment.EditorID)).
		Set("edited_at", optionalTimestamptz(comment.EditedAt)).
		Set("updated_at", pgtype.Timestamptz{Time: comment.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: comment.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("CommentRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("CommentRepository.Update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("CommentRepository.Update: comment %s not found", comment.ID)
	}
	return nil
}

// Delete removes a comment from the database
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("comments").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("CommentRepository.Delete: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("CommentRepository.Delete: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by its ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query, args, err := r.SB.
		Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CommentRepository.GetByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("CommentRepository.GetByID: %w", err)
	}
	return comment, nil
}

// ListByArticle retrieves all comments on an article
func (r *CommentRepository) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]*domain.Comment, error) {
	return r.listComments(ctx, sq.Eq{"article_id": pgtype.UUID{Bytes: articleID, Valid: true}})
}

// ListByAuthor retrieves all comments by one author
func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Comment, error) {
	return r.listComments(ctx, sq.Eq{"author_id": pgtype.UUID{Bytes: authorID, Valid: true}})
}

func (r *CommentRepository) listComments(ctx context.Context, where sq.Eq) ([]*domain.Comment, error) {
	query, args, err := r.SB.
		Select(commentColumns...).
		From("comments").
		Where(where).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CommentRepository.listComments: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("CommentRepository.listComments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("CommentRepository.listComments: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CommentRepository.listComments: %w", err)
	}
	return comments, nil
}

// scanComment scans a single comment from pgx.Row
func scanComment(row pgx.Row) (*domain.Comment, error) {
	var (
		idVal      pgtype.UUID
		articleVal pgtype.UUID
		parentVal  pgtype.UUID
		content    string
		authorVal  pgtype.UUID
		sectionVal pgtype.UUID
		status     int
		privacy    int
		readLevel  int
		likes      int64
		dislikes   int64
		editorVal  pgtype.UUID
		editedAt   pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(
		&idVal, &articleVal, &parentVal, &content, &authorVal, &sectionVal,
		&status, &privacy, &readLevel, &likes, &dislikes,
		&editorVal, &editedAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return &domain.Comment{
		ID:           uuid.UUID(idVal.Bytes),
		ArticleID:    uuid.UUID(articleVal.Bytes),
		ParentID:     uuidPtr(parentVal),
		Content:      content,
		AuthorID:     uuid.UUID(authorVal.Bytes),
		SectionID:    uuidPtr(sectionVal),
		Status:       domain.CommentStatus(status),
		Privacy:      lifecycle.Privacy(privacy),
		ReadLevel:    readLevel,
		LikeCount:    likes,
		DislikeCount: dislikes,
		EditorID:     uuidPtr(editorVal),
		EditedAt:     timePtr(editedAt),
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}
