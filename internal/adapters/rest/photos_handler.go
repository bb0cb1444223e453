package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/photos/application"
	"github.com/verdigris-dev/atrium/backend/internal/photos/domain"
)

// PhotosHandler handles photo and album endpoints
type PhotosHandler struct {
	*BaseHandler
	service *application.PhotosService
}

// NewPhotosHandler creates a new photos handler
func NewPhotosHandler(base *BaseHandler, service *application.PhotosService) *PhotosHandler {
	return &PhotosHandler{
		BaseHandler: base,
		service:     service,
	}
}

type photoPayload struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Description  string     `json:"description"`
	AuthorID     uuid.UUID  `json:"author_id"`
	AlbumID      *uuid.UUID `json:"album_id,omitempty"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`
	Status       int        `json:"status"`
	Privacy      int        `json:"privacy"`
	ReadLevel    int        `json:"read_level"`
	ReadCount    int64      `json:"read_count"`
	LikeCount    int64      `json:"like_count"`
	DislikeCount int64      `json:"dislike_count"`
	EditorID     *uuid.UUID `json:"editor_id,omitempty"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type albumPayload struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`
	CoverPhotoID *uuid.UUID `json:"cover_photo_id,omitempty"`
	Privacy      int        `json:"privacy"`
	ReadLevel    int        `json:"read_level"`
	PhotoCount   int64      `json:"photo_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toPhotoPayload(photo *domain.Photo) photoPayload {
	return photoPayload{
		ID:           photo.ID,
		Title:        photo.Title,
		URL:          photo.URL,
		Description:  photo.Description,
		AuthorID:     photo.AuthorID,
		AlbumID:      photo.AlbumID,
		SectionID:    photo.SectionID,
		Status:       int(photo.Status),
		Privacy:      int(photo.Privacy),
		ReadLevel:    photo.ReadLevel,
		ReadCount:    photo.ReadCount,
		LikeCount:    photo.LikeCount,
		DislikeCount: photo.DislikeCount,
		EditorID:     photo.EditorID,
		EditedAt:     photo.EditedAt,
		CreatedAt:    photo.CreatedAt,
		UpdatedAt:    photo.UpdatedAt,
	}
}

func toAlbumPayload(album *domain.Album) albumPayload {
	return albumPayload{
		ID:           album.ID,
		Name:         album.Name,
		Description:  album.Description,
		OwnerID:      album.OwnerID,
		SectionID:    album.SectionID,
		CoverPhotoID: album.CoverPhotoID,
		Privacy:      int(album.Privacy),
		ReadLevel:    album.ReadLevel,
		PhotoCount:   album.PhotoCount,
		CreatedAt:    album.CreatedAt,
		UpdatedAt:    album.UpdatedAt,
	}
}

// UploadPhoto registers an uploaded photo
func (h *PhotosHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string     `json:"title"`
		URL         string     `json:"url"`
		Description string     `json:"description"`
		AlbumID     *uuid.UUID `json:"album_id"`
		Privacy     int        `json:"privacy"`
		ReadLevel   int        `json:"read_level"`
		Status      *int       `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.UploadPhotoParams{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		AlbumID:     req.AlbumID,
		Privacy:     lifecycle.Privacy(req.Privacy),
		ReadLevel:   req.ReadLevel,
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid status code", http.StatusBadRequest)
			return
		}
		params.RequestedStatus = &status
	}

	photo, err := h.service.UploadPhoto(r.Context(), actor, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toPhotoPayload(photo), http.StatusCreated)
}

// GetPhoto returns one photo if it is visible to the caller
func (h *PhotosHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	photoID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "photo id")
	if !ok {
		return
	}

	photo, err := h.service.GetPhoto(r.Context(), actor, photoID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toPhotoPayload(photo), http.StatusOK)
}

// UpdatePhoto applies caption edits and status transitions
func (h *PhotosHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	photoID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "photo id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Privacy     *int    `json:"privacy"`
		ReadLevel   *int    `json:"read_level"`
		Status      *int    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	params := application.UpdatePhotoParams{
		Title:       req.Title,
		Description: req.Description,
		ReadLevel:   req.ReadLevel,
	}
	if req.Privacy != nil {
		privacy := lifecycle.Privacy(*req.Privacy)
		params.Privacy = &privacy
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.WriteJSONError(w, r, "validation_error", "Invalid status code", http.StatusBadRequest)
			return
		}
		params.RequestedStatus = &status
	}

	photo, err := h.service.UpdatePhoto(r.Context(), actor, photoID, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toPhotoPayload(photo), http.StatusOK)
}

// DeletePhotos deletes a batch of photos, reporting a per-item outcome
func (h *PhotosHandler) DeletePhotos(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		IDs   []uuid.UUID `json:"ids"`
		Force bool        `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		h.WriteJSONError(w, r, "validation_error", "No photo ids provided", http.StatusBadRequest)
		return
	}

	results := h.service.DeletePhotos(r.Context(), actor, req.IDs, req.Force)
	h.WriteJSONResponse(w, r, toBatchResultPayload(results), http.StatusOK)
}

// CreateAlbum creates an album owned by the caller
func (h *PhotosHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		SectionID   *uuid.UUID `json:"section_id"`
		Privacy     int        `json:"privacy"`
		ReadLevel   int        `json:"read_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	album, err := h.service.CreateAlbum(r.Context(), actor, application.CreateAlbumParams{
		Name:        req.Name,
		Description: req.Description,
		SectionID:   req.SectionID,
		Privacy:     lifecycle.Privacy(req.Privacy),
		ReadLevel:   req.ReadLevel,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toAlbumPayload(album), http.StatusCreated)
}

// GetAlbum returns one album if it is visible to the caller
func (h *PhotosHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	albumID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "album id")
	if !ok {
		return
	}

	album, err := h.service.GetAlbum(r.Context(), actor, albumID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toAlbumPayload(album), http.StatusOK)
}

// ListAlbums returns an owner's albums visible to the caller
func (h *PhotosHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	ownerID, ok := h.ParseUUID(w, r, chi.URLParam(r, "ownerID"), "owner id")
	if !ok {
		return
	}

	albums, err := h.service.ListAlbums(r.Context(), actor, ownerID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	payload := make([]albumPayload, 0, len(albums))
	for _, album := range albums {
		payload = append(payload, toAlbumPayload(album))
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// ListAlbumPhotos returns an album's photos visible to the caller
func (h *PhotosHandler) ListAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	albumID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "album id")
	if !ok {
		return
	}

	photos, err := h.service.ListAlbumPhotos(r.Context(), actor, albumID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	payload := make([]photoPayload, 0, len(photos))
	for _, photo := range photos {
		payload = append(payload, toPhotoPayload(photo))
	}
	h.WriteJSONResponse(w, r, payload, http.StatusOK)
}

// UpdateAlbum applies album detail changes
func (h *PhotosHandler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	albumID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "album id")
	if !ok {
		return
	}

	var req struct {
		Name         *string    `json:"name"`
		Description  *string    `json:"description"`
		CoverPhotoID *uuid.UUID `json:"cover_photo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteJSONError(w, r, "validation_error", "Invalid request body", http.StatusBadRequest)
		return
	}

	album, err := h.service.UpdateAlbum(r.Context(), actor, albumID, application.UpdateAlbumParams{
		Name:         req.Name,
		Description:  req.Description,
		CoverPhotoID: req.CoverPhotoID,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSONResponse(w, r, toAlbumPayload(album), http.StatusOK)
}

// DeleteAlbum removes an empty album
func (h *PhotosHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	albumID, ok := h.ParseUUID(w, r, chi.URLParam(r, "id"), "album id")
	if !ok {
		return
	}

	if err := h.service.DeleteAlbum(r.Context(), actor, albumID); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
