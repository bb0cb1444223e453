package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/photos/domain"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// PhotoRepository is the persistence port for photos.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.Photo) error
	Update(ctx context.Context, photo *domain.Photo) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Photo, error)

	// ListByAlbum returns all photos in an album regardless of status;
	// visibility filtering happens in the service.
	ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]*domain.Photo, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*domain.Photo, error)

	CountByAlbum(ctx context.Context, albumID uuid.UUID) (int64, error)
}

// AlbumRepository is the persistence port for albums.
type AlbumRepository interface {
	Create(ctx context.Context, album *domain.Album) error
	Update(ctx context.Context, album *domain.Album) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Album, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Album, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*domain.Album, error)
}

// SectionSource resolves section references on photos and albums.
// Satisfied by the sections application service.
type SectionSource interface {
	GetSection(ctx context.Context, sectionID uuid.UUID) (*sections.Section, error)
}
