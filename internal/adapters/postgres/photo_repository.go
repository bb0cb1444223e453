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
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/photos/domain"
	"github.com/verdigris-dev/atrium/backend/internal/photos/ports"
	"github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
)

var photoColumns = []string{
	"id", "title", "url", "description", "author_id", "album_id", "section_id",
	"status", "privacy", "read_level",
	"read_count", "like_count", "dislike_count",
	"editor_id", "edited_at", "created_at", "updated_at",
}

// PhotoRepository implements the photos PhotoRepository interface using
// PostgreSQL
type PhotoRepository struct {
	postgres.BaseRepository
}

// NewPhotoRepository creates a new PostgreSQL photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *PhotoRepository) WithTx(tx pgx.Tx) ports.PhotoRepository {
	return &PhotoRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a new photo into the database
func (r *PhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	query, args, err := r.SB.
		Insert("photos").
		Columns(photoColumns...).
		Values(
			pgtype.UUID{Bytes: photo.ID, Valid: true},
			photo.Title,
			photo.URL,
			photo.Description,
			pgtype.UUID{Bytes: photo.AuthorID, Valid: true},
			optionalUUID(photo.AlbumID),
			optionalUUID(photo.SectionID),
			int(photo.Status),
			int(photo.Privacy),
			photo.ReadLevel,
			photo.ReadCount,
			photo.LikeCount,
			photo.DislikeCount,
			optionalUUID(photo.EditorID),
			optionalTimestamptz(photo.EditedAt),
			pgtype.Timestamptz{Time: photo.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: photo.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("PhotoRepository.Create: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("PhotoRepository.Create: %w", err)
	}
	return nil
}

// Update updates an existing photo in the database
func (r *PhotoRepository) Update(ctx context.Context, photo *domain.Photo) error {
	query, args, err := r.SB.
		Update("photos").
		Set("title", photo.Title).
		Set("description", photo.Description).
		Set("album_id", optionalUUID(photo.AlbumID)).
		Set("status", int(photo.Status)).
		Set("privacy", int(photo.Privacy)).
		Set("read_level", photo.ReadLevel).
		Set("editor_id", optionalUUID(photo.EditorID)).
		Set("edited_at", optionalTimestamptz(photo.EditedAt)).
		Set("updated_at", pgtype.Timestamptz{Time: photo.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: photo.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PhotoRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("PhotoRepository.Update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("PhotoRepository.Update: photo %s not found", photo.ID)
	}
	return nil
}

// Delete removes a photo from the database
func (r *PhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("photos").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PhotoRepository.Delete: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("PhotoRepository.Delete: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by its ID
func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	query, args, err := r.SB.
		Select(photoColumns...).
		From("photos").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PhotoRepository.GetByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	photo, err := scanPhoto(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("PhotoRepository.GetByID: %w", err)
	}
	return photo, nil
}

// ListByAlbum retrieves all photos in an album
func (r *PhotoRepository) ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]*domain.Photo, error) {
	return r.listPhotos(ctx, sq.Eq{"album_id": pgtype.UUID{Bytes: albumID, Valid: true}})
}

// ListByAuthor retrieves all photos by one author
func (r *PhotoRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Photo, error) {
	return r.listPhotos(ctx, sq.Eq{"author_id": pgtype.UUID{Bytes: authorID, Valid: true}})
}

// CountByAlbum counts the photos remaining in an album
func (r *PhotoRepository) CountByAlbum(ctx context.Context, albumID uuid.UUID) (int64, error) {
	query, args, err := r.SB.
		Select("COUNT(*)").
		From("photos").
		Where(sq.Eq{"album_id": pgtype.UUID{Bytes: albumID, Valid: true}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("PhotoRepository.CountByAlbum: build query: %w", err)
	}

	var count int64
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("PhotoRepository.CountByAlbum: %w", err)
	}
	return count, nil
}

func (r *PhotoRepository) listPhotos(ctx context.Context, where sq.Eq) ([]*domain.Photo, error) {
	query, args, err := r.SB.
		Select(photoColumns...).
		From("photos").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PhotoRepository.listPhotos: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("PhotoRepository.listPhotos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("PhotoRepository.listPhotos: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PhotoRepository.listPhotos: %w", err)
	}
	return photos, nil
}

// scanPhoto scans a single photo from pgx.Row
func scanPhoto(row pgx.Row) (*domain.Photo, error) {
	var (
		idVal      pgtype.UUID
		title      string
		url        string
		desc       string
		authorVal  pgtype.UUID
		albumVal   pgtype.UUID
		sectionVal pgtype.UUID
		status     int
		privacy    int
		readLevel  int
		readCount  int64
		likes      int64
		dislikes   int64
		editorVal  pgtype.UUID
		editedAt   pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(
		&idVal, &title, &url, &desc, &authorVal, &albumVal, &sectionVal,
		&status, &privacy, &readLevel, &readCount, &likes, &dislikes,
		&editorVal, &editedAt, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return &domain.Photo{
		ID:           uuid.UUID(idVal.Bytes),
		Title:        title,
		URL:          url,
		Description:  desc,
		AuthorID:     uuid.UUID(authorVal.Bytes),
		AlbumID:      uuidPtr(albumVal),
		SectionID:    uuidPtr(sectionVal),
		Status:       domain.PhotoStatus(status),
		Privacy:      lifecycle.Privacy(privacy),
		ReadLevel:    readLevel,
		ReadCount:    readCount,
		LikeCount:    likes,
		DislikeCount: dislikes,
		EditorID:     uuidPtr(editorVal),
		EditedAt:     timePtr(editedAt),
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}
