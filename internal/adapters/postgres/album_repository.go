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

var albumColumns = []string{
	"id", "name", "description", "owner_id", "section_id", "cover_photo_id",
	"privacy", "read_level", "photo_count", "created_at", "updated_at",
}

// AlbumRepository implements the photos AlbumRepository interface using
// PostgreSQL
type AlbumRepository struct {
	postgres.BaseRepository
}

// NewAlbumRepository creates a new PostgreSQL album repository
func NewAlbumRepository(db *pgxpool.Pool) *AlbumRepository {
	return &AlbumRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *AlbumRepository) WithTx(tx pgx.Tx) ports.AlbumRepository {
	return &AlbumRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a new album into the database
func (r *AlbumRepository) Create(ctx context.Context, album *domain.Album) error {
	query, args, err := r.SB.
		Insert("albums").
		Columns(albumColumns...).
		Values(
			pgtype.UUID{Bytes: album.ID, Valid: true},
			album.Name,
			album.Description,
			pgtype.UUID{Bytes: album.OwnerID, Valid: true},
			optionalUUID(album.SectionID),
			optionalUUID(album.CoverPhotoID),
			int(album.Privacy),
			album.ReadLevel,
			album.PhotoCount,
			pgtype.Timestamptz{Time: album.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: album.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("AlbumRepository.Create: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("AlbumRepository.Create: %w", err)
	}
	return nil
}

// Update updates an existing album in the database
func (r *AlbumRepository) Update(ctx context.Context, album *domain.Album) error {
	query, args, err := r.SB.
		Update("albums").
		Set("name", album.Name).
		Set("description", album.Description).
		Set("cover_photo_id", optionalUUID(album.CoverPhotoID)).
		Set("privacy", int(album.Privacy)).
		Set("read_level", album.ReadLevel).
		Set("updated_at", pgtype.Timestamptz{Time: album.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: album.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("AlbumRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("AlbumRepository.Update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("AlbumRepository.Update: album %s not found", album.ID)
	}
	return nil
}

// Delete removes an album from the database
func (r *AlbumRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("albums").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("AlbumRepository.Delete: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("AlbumRepository.Delete: %w", err)
	}
	return nil
}

// GetByID retrieves an album by its ID
func (r *AlbumRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Album, error) {
	query, args, err := r.SB.
		Select(albumColumns...).
		From("albums").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("AlbumRepository.GetByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	album, err := scanAlbum(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("AlbumRepository.GetByID: %w", err)
	}
	return album, nil
}

// ListByOwner retrieves all albums owned by one actor
func (r *AlbumRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Album, error) {
	return r.listAlbums(ctx, sq.Eq{"owner_id": pgtype.UUID{Bytes: ownerID, Valid: true}})
}

// ListBySection retrieves all albums scoped to a section
func (r *AlbumRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*domain.Album, error) {
	return r.listAlbums(ctx, sq.Eq{"section_id": pgtype.UUID{Bytes: sectionID, Valid: true}})
}

func (r *AlbumRepository) listAlbums(ctx context.Context, where sq.Eq) ([]*domain.Album, error) {
	query, args, err := r.SB.
		Select(albumColumns...).
		From("albums").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("AlbumRepository.listAlbums: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("AlbumRepository.listAlbums: %w", err)
	}
	defer rows.Close()

	var albums []*domain.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("AlbumRepository.listAlbums: %w", err)
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AlbumRepository.listAlbums: %w", err)
	}
	return albums, nil
}

// scanAlbum scans a single album from pgx.Row
func scanAlbum(row pgx.Row) (*domain.Album, error) {
	var (
		idVal      pgtype.UUID
		name       string
		desc       string
		ownerVal   pgtype.UUID
		sectionVal pgtype.UUID
		coverVal   pgtype.UUID
		privacy    int
		readLevel  int
		photoCount int64
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(
		&idVal, &name, &desc, &ownerVal, &sectionVal, &coverVal,
		&privacy, &readLevel, &photoCount, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	return &domain.Album{
		ID:           uuid.UUID(idVal.Bytes),
		Name:         name,
		Description:  desc,
		OwnerID:      uuid.UUID(ownerVal.Bytes),
		SectionID:    uuidPtr(sectionVal),
		CoverPhotoID: uuidPtr(coverVal),
		Privacy:      lifecycle.Privacy(privacy),
		ReadLevel:    readLevel,
		PhotoCount:   photoCount,
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}
