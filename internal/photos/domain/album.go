package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
)

// Album validation errors
var (
	ErrInvalidAlbumName = errors.New("album name is required and must not exceed 100 characters")
	ErrInvalidOwnerID   = errors.New("owner ID is required")
	ErrAlbumNotEmpty    = errors.New("album still contains photos")
)

// MaxAlbumNameLength bounds an album name.
const MaxAlbumNameLength = 100

// Album groups photos under one owner. PhotoCount tracks photos in the
// active state and is maintained from status transition events, so it may
// trail a transition briefly but converges.
type Album struct {
	ID           uuid.UUID
	Name         string
	Description  string
	OwnerID      uuid.UUID
	SectionID    *uuid.UUID
	CoverPhotoID *uuid.UUID
	Privacy      lifecycle.Privacy
	ReadLevel    int
	PhotoCount   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAlbum creates an album with validation.
func NewAlbum(name, description string, ownerID uuid.UUID, sectionID *uuid.UUID, privacy lifecycle.Privacy, readLevel int) (*Album, error) {
	if name == "" || len(name) > MaxAlbumNameLength {
		return nil, ErrInvalidAlbumName
	}
	if ownerID == uuid.Nil {
		return nil, ErrInvalidOwnerID
	}
	if !privacy.IsValid() {
		return nil, fmt.Errorf("invalid privacy code: %d", privacy)
	}
	if readLevel < 0 {
		return nil, ErrInvalidReadLevel
	}

	now := time.Now()
	return &Album{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		SectionID:   sectionID,
		Privacy:     privacy,
		ReadLevel:   readLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateDetails replaces the album's descriptive fields.
func (a *Album) UpdateDetails(name, description string) error {
	if name == "" || len(name) > MaxAlbumNameLength {
		return ErrInvalidAlbumName
	}
	a.Name = name
	a.Description = description
	a.UpdatedAt = time.Now()
	return nil
}

// SetCover points the album cover at one of its photos.
func (a *Album) SetCover(photoID *uuid.UUID) {
	a.CoverPhotoID = photoID
	a.UpdatedAt = time.Now()
}
