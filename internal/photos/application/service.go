package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/content/visibility"
	"github.com/verdigris-dev/atrium/backend/internal/photos/domain"
	"github.com/verdigris-dev/atrium/backend/internal/photos/ports"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	"github.com/verdigris-dev/atrium/backend/internal/platform/eventbus"
	"github.com/verdigris-dev/atrium/backend/internal/platform/events"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// Error definitions for photo and album operations
var (
	ErrPhotoNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodePhotoNotFound,
		"photo not found",
		http.StatusNotFound,
	)
	ErrAlbumNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeAlbumNotFound,
		"album not found",
		http.StatusNotFound,
	)
	ErrInvalidPhotoData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid photo data",
		http.StatusBadRequest,
	)
	ErrInvalidAlbumData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid album data",
		http.StatusBadRequest,
	)
	ErrAlbumNotEmpty = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeGeneral,
		"album still contains photos",
		http.StatusConflict,
	)
)

// PhotosService handles photo and album business logic.
type PhotosService struct {
	photos     ports.PhotoRepository
	albums     ports.AlbumRepository
	sections   ports.SectionSource
	machine    *lifecycle.Machine
	evaluator  *visibility.Evaluator
	resolver   *authzapp.PermissionResolver
	delegation lifecycle.DelegationSource
	counters   counters.Store
	eventBus   *eventbus.Bus
	logger     logger.Logger
	sanitizer  *bluemonday.Policy
}

// NewPhotosService creates a new photos service.
func NewPhotosService(
	photoRepo ports.PhotoRepository,
	albumRepo ports.AlbumRepository,
	sectionSource ports.SectionSource,
	resolver *authzapp.PermissionResolver,
	delegation lifecycle.DelegationSource,
	policy *lifecycle.PolicyConfig,
	counterStore counters.Store,
	eventBus *eventbus.Bus,
	logger logger.Logger,
) *PhotosService {
	return &PhotosService{
		photos:     photoRepo,
		albums:     albumRepo,
		sections:   sectionSource,
		machine:    lifecycle.NewMachine(lifecycle.PhotoKind, resolver, delegation, policy),
		evaluator:  visibility.NewEvaluator(lifecycle.PhotoKind, resolver, delegation),
		resolver:   resolver,
		delegation: delegation,
		counters:   counterStore,
		eventBus:   eventBus,
		logger:     logger,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// UploadPhotoParams contains parameters for creating a photo.
type UploadPhotoParams struct {
	Title           string
	URL             string
	Description     string
	AlbumID         *uuid.UUID
	Privacy         lifecycle.Privacy
	ReadLevel       int
	RequestedStatus *domain.PhotoStatus
}

// UploadPhoto creates a photo; its initial status comes from the machine's
// creation gate, never from the request directly. Section scope is
// inherited from the album when there is one.
func (s *PhotosService) UploadPhoto(ctx context.Context, actor authz.Actor, params UploadPhotoParams) (*domain.Photo, error) {
	var sectionID *uuid.UUID
	if params.AlbumID != nil {
		album, err := s.getAlbum(ctx, *params.AlbumID)
		if err != nil {
			return nil, err
		}
		if err := s.checkAlbumRights(ctx, actor, album); err != nil {
			return nil, err
		}
		sectionID = album.SectionID
	}

	section, err := s.resolveSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	var requested *lifecycle.Status
	if params.RequestedStatus != nil {
		if !params.RequestedStatus.IsValid() {
			return nil, lifecycle.ErrInvalidStatus
		}
		r := params.RequestedStatus.Lifecycle()
		requested = &r
	}

	status, err := s.machine.CreationStatus(ctx, actor, section, requested)
	if err != nil {
		return nil, err
	}

	photo, err := domain.NewPhoto(
		params.Title,
		params.URL,
		s.sanitizer.Sanitize(params.Description),
		actor.ID,
		params.AlbumID,
		sectionID,
		params.Privacy,
		params.ReadLevel,
	)
	if err != nil {
		return nil, ErrInvalidPhotoData.WithDetails(err.Error())
	}
	photo.Status = domain.FromLifecycle(status)

	if err := s.photos.Create(ctx, photo); err != nil {
		s.logger.Error(ctx, "failed to create photo", "error", err)
		return nil, fmt.Errorf("PhotosService.UploadPhoto: %w", err)
	}

	if photo.Status == domain.PhotoActive {
		s.publishStatusChange(ctx, photo, actor.ID, photo.Status, 1)
	}
	s.logger.Info(ctx, "photo uploaded",
		"photo_id", photo.ID,
		"author_id", actor.ID,
		"status", int(photo.Status),
	)
	return photo, nil
}

// UpdatePhotoParams carries optional caption and status changes.
type UpdatePhotoParams struct {
	Title           *string
	Description     *string
	Privacy         *lifecycle.Privacy
	ReadLevel       *int
	RequestedStatus *domain.PhotoStatus
}

// UpdatePhoto applies caption edits and status transitions through the
// machine's update gate.
func (s *PhotosService) UpdatePhoto(ctx context.Context, actor authz.Actor, photoID uuid.UUID, params UpdatePhotoParams) (*domain.Photo, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, photo.SectionID)
	if err != nil {
		return nil, err
	}

	contentChanged := params.Title != nil || params.Description != nil
	if contentChanged {
		if err := s.checkEditRights(ctx, actor, section, photo.AuthorID); err != nil {
			return nil, err
		}
	}

	var requested *lifecycle.Status
	if params.RequestedStatus != nil {
		if !params.RequestedStatus.IsValid() {
			return nil, lifecycle.ErrInvalidStatus
		}
		st := params.RequestedStatus.Lifecycle()
		requested = &st
	}

	transition, err := s.machine.UpdateStatus(ctx, actor, section, photo.AuthorID, photo.Status.Lifecycle(), requested, contentChanged)
	if err != nil {
		return nil, err
	}

	if contentChanged {
		title := photo.Title
		if params.Title != nil {
			title = *params.Title
		}
		description := photo.Description
		if params.Description != nil {
			description = s.sanitizer.Sanitize(*params.Description)
		}
		if err := photo.UpdateDetails(title, description, actor.ID); err != nil {
			return nil, ErrInvalidPhotoData.WithDetails(err.Error())
		}
	}
	if params.Privacy != nil {
		if !params.Privacy.IsValid() {
			return nil, ErrInvalidPhotoData
		}
		photo.Privacy = *params.Privacy
	}
	if params.ReadLevel != nil {
		if *params.ReadLevel < 0 {
			return nil, ErrInvalidPhotoData.WithDetails(domain.ErrInvalidReadLevel.Error())
		}
		photo.ReadLevel = *params.ReadLevel
	}

	oldStatus := photo.Status
	if transition.Changed {
		photo.Status = domain.FromLifecycle(transition.To)
	}

	if err := s.photos.Update(ctx, photo); err != nil {
		s.logger.Error(ctx, "failed to update photo", "photo_id", photoID, "error", err)
		return nil, fmt.Errorf("PhotosService.UpdatePhoto: %w", err)
	}

	if transition.Changed {
		s.publishStatusChange(ctx, photo, actor.ID, oldStatus, transition.Delta)
	}
	return photo, nil
}

// GetPhoto retrieves one photo under the visibility rules.
func (s *PhotosService) GetPhoto(ctx context.Context, actor authz.Actor, photoID uuid.UUID) (*domain.Photo, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, photo.SectionID)
	if err != nil {
		return nil, err
	}

	decision, err := s.evaluator.CanGet(ctx, actor, section, visibility.View{
		AuthorID:  photo.AuthorID,
		Status:    photo.Status.Lifecycle(),
		Privacy:   photo.Privacy,
		ReadLevel: photo.ReadLevel,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Visible {
		// Hidden and absent are deliberately indistinguishable.
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

// ListAlbumPhotos lists an album's photos the actor may see.
func (s *PhotosService) ListAlbumPhotos(ctx context.Context, actor authz.Actor, albumID uuid.UUID) ([]*domain.Photo, error) {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	section, err := s.resolveSection(ctx, album.SectionID)
	if err != nil {
		return nil, err
	}

	all, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		s.logger.Error(ctx, "failed to list photos", "album_id", albumID, "error", err)
		return nil, fmt.Errorf("PhotosService.ListAlbumPhotos: %w", err)
	}

	visible := make([]*domain.Photo, 0, len(all))
	for _, photo := range all {
		decision, err := s.evaluator.CanGet(ctx, actor, section, visibility.View{
			AuthorID:  photo.AuthorID,
			Status:    photo.Status.Lifecycle(),
			Privacy:   photo.Privacy,
			ReadLevel: photo.ReadLevel,
		})
		if err != nil {
			return nil, err
		}
		if decision.Visible {
			visible = append(visible, photo)
		}
	}
	return visible, nil
}

// DeletePhotos deletes a batch of photos. Each id is evaluated
// independently; one failure never aborts the rest.
func (s *PhotosService) DeletePhotos(ctx context.Context, actor authz.Actor, ids []uuid.UUID, force bool) []lifecycle.BatchResult {
	results := make([]lifecycle.BatchResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, lifecycle.BatchResult{ID: id, Outcome: s.deleteOne(ctx, actor, id, force)})
	}
	return results
}

func (s *PhotosService) deleteOne(ctx context.Context, actor authz.Actor, id uuid.UUID, force bool) lifecycle.BatchOutcome {
	photo, err := s.getPhoto(ctx, id)
	if err != nil {
		return lifecycle.OutcomeNotFound
	}
	section, err := s.resolveSection(ctx, photo.SectionID)
	if err != nil {
		return lifecycle.OutcomeNotFound
	}

	allowed, err := s.machine.CanDelete(ctx, actor, section, photo.AuthorID, force)
	if err != nil || !allowed {
		return lifecycle.OutcomePermissionDenied
	}

	if force {
		delta := lifecycle.ActiveDelta(photo.Status.Lifecycle(), lifecycle.StatusCancel)
		if err := s.photos.Delete(ctx, id); err != nil {
			s.logger.Error(ctx, "failed to delete photo", "photo_id", id, "error", err)
			return lifecycle.OutcomeNotFound
		}
		if delta != 0 {
			s.publishStatusChange(ctx, photo, actor.ID, photo.Status, delta)
		}
		s.logger.Info(ctx, "photo deleted", "photo_id", id, "actor_id", actor.ID)
		return lifecycle.OutcomeSuccess
	}

	oldStatus := photo.Status
	if oldStatus == domain.PhotoCancel {
		return lifecycle.OutcomeSuccess
	}
	delta := lifecycle.ActiveDelta(oldStatus.Lifecycle(), lifecycle.StatusCancel)
	photo.Status = domain.PhotoCancel
	if err := s.photos.Update(ctx, photo); err != nil {
		s.logger.Error(ctx, "failed to cancel photo", "photo_id", id, "error", err)
		return lifecycle.OutcomeNotFound
	}
	s.publishStatusChange(ctx, photo, actor.ID, oldStatus, delta)
	return lifecycle.OutcomeSuccess
}

// CreateAlbumParams contains parameters for creating an album.
type CreateAlbumParams struct {
	Name        string
	Description string
	SectionID   *uuid.UUID
	Privacy     lifecycle.Privacy
	ReadLevel   int
}

// CreateAlbum creates an album. Section-scoped albums require the
// album-manage capability in that section.
func (s *PhotosService) CreateAlbum(ctx context.Context, actor authz.Actor, params CreateAlbumParams) (*domain.Album, error) {
	if params.SectionID != nil {
		section, err := s.sections.GetSection(ctx, *params.SectionID)
		if err != nil {
			return nil, err
		}
		override := s.resolver.MajorGE(actor, permission.PhotoEdit, authz.Level10)
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapAlbumManage, override)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, authzapp.ErrPermissionDenied
		}
	}

	album, err := domain.NewAlbum(params.Name, s.sanitizer.Sanitize(params.Description), actor.ID, params.SectionID, params.Privacy, params.ReadLevel)
	if err != nil {
		return nil, ErrInvalidAlbumData.WithDetails(err.Error())
	}

	if err := s.albums.Create(ctx, album); err != nil {
		s.logger.Error(ctx, "failed to create album", "error", err)
		return nil, fmt.Errorf("PhotosService.CreateAlbum: %w", err)
	}

	s.logger.Info(ctx, "album created", "album_id", album.ID, "owner_id", actor.ID)
	return album, nil
}

// UpdateAlbumParams carries optional album changes.
type UpdateAlbumParams struct {
	Name         *string
	Description  *string
	CoverPhotoID *uuid.UUID
}

// UpdateAlbum applies album detail changes for the owner or a delegated
// album manager.
func (s *PhotosService) UpdateAlbum(ctx context.Context, actor authz.Actor, albumID uuid.UUID, params UpdateAlbumParams) (*domain.Album, error) {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAlbumRights(ctx, actor, album); err != nil {
		return nil, err
	}

	name := album.Name
	if params.Name != nil {
		name = *params.Name
	}
	description := album.Description
	if params.Description != nil {
		description = s.sanitizer.Sanitize(*params.Description)
	}
	if err := album.UpdateDetails(name, description); err != nil {
		return nil, ErrInvalidAlbumData.WithDetails(err.Error())
	}
	if params.CoverPhotoID != nil {
		photo, err := s.getPhoto(ctx, *params.CoverPhotoID)
		if err != nil {
			return nil, err
		}
		if photo.AlbumID == nil || *photo.AlbumID != album.ID {
			return nil, ErrInvalidAlbumData.WithDetails("cover photo is not in this album")
		}
		album.SetCover(params.CoverPhotoID)
	}

	if err := s.albums.Update(ctx, album); err != nil {
		s.logger.Error(ctx, "failed to update album", "album_id", albumID, "error", err)
		return nil, fmt.Errorf("PhotosService.UpdateAlbum: %w", err)
	}
	return album, nil
}

// GetAlbum retrieves one album.
func (s *PhotosService) GetAlbum(ctx context.Context, actor authz.Actor, albumID uuid.UUID) (*domain.Album, error) {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album.Privacy == lifecycle.PrivacyPrivate && album.OwnerID != actor.ID &&
		!s.resolver.MajorGE(actor, permission.PhotoGet, authz.Level10) {
		// Hidden and absent are deliberately indistinguishable.
		return nil, ErrAlbumNotFound
	}
	if n, err := s.counters.Value(ctx, "album", album.ID, counters.FieldPhoto); err == nil {
		album.PhotoCount = n
	}
	return album, nil
}

// ListAlbums lists an owner's albums.
func (s *PhotosService) ListAlbums(ctx context.Context, actor authz.Actor, ownerID uuid.UUID) ([]*domain.Album, error) {
	all, err := s.albums.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "failed to list albums", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("PhotosService.ListAlbums: %w", err)
	}
	if actor.ID == ownerID || s.resolver.MajorGE(actor, permission.PhotoGet, authz.Level10) {
		return all, nil
	}
	visible := make([]*domain.Album, 0, len(all))
	for _, album := range all {
		if album.Privacy != lifecycle.PrivacyPrivate {
			visible = append(visible, album)
		}
	}
	return visible, nil
}

// DeleteAlbum removes an empty album.
func (s *PhotosService) DeleteAlbum(ctx context.Context, actor authz.Actor, albumID uuid.UUID) error {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if err := s.checkAlbumRights(ctx, actor, album); err != nil {
		return err
	}

	n, err := s.photos.CountByAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("PhotosService.DeleteAlbum: %w", err)
	}
	if n > 0 {
		return ErrAlbumNotEmpty
	}

	if err := s.albums.Delete(ctx, albumID); err != nil {
		s.logger.Error(ctx, "failed to delete album", "album_id", albumID, "error", err)
		return fmt.Errorf("PhotosService.DeleteAlbum: %w", err)
	}
	s.logger.Info(ctx, "album deleted", "album_id", albumID, "actor_id", actor.ID)
	return nil
}

func (s *PhotosService) publishStatusChange(ctx context.Context, photo *domain.Photo, actorID uuid.UUID, old domain.PhotoStatus, delta int64) {
	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PhotoStatusChangedTopic,
		Payload: events.PhotoStatusChangedEvent{
			PhotoID:     photo.ID,
			AlbumID:     photo.AlbumID,
			ActorID:     actorID,
			OldStatus:   int(old),
			NewStatus:   int(photo.Status),
			ActiveDelta: delta,
			OccurredAt:  time.Now(),
		},
	})
}

// checkAlbumRights allows album mutations by the owner, by LEVEL_10 edit
// grant holders, or by delegated album managers of the album's section.
func (s *PhotosService) checkAlbumRights(ctx context.Context, actor authz.Actor, album *domain.Album) error {
	if actor.ID == album.OwnerID {
		return nil
	}
	if s.resolver.MajorGE(actor, permission.PhotoEdit, authz.Level10) {
		return nil
	}
	if album.SectionID != nil {
		section, err := s.sections.GetSection(ctx, *album.SectionID)
		if err != nil {
			return err
		}
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapAlbumManage, false)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	return authzapp.ErrPermissionDenied
}

// checkEditRights allows caption edits by the author, by LEVEL_10 edit
// grant holders, or by delegated photo auditors.
func (s *PhotosService) checkEditRights(ctx context.Context, actor authz.Actor, section *sections.Section, authorID uuid.UUID) error {
	if actor.ID == authorID {
		return nil
	}
	if s.resolver.MajorGE(actor, permission.PhotoEdit, authz.Level10) {
		return nil
	}
	if section != nil {
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, sections.CapPhotoAudit, false)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	return authzapp.ErrPermissionDenied
}

func (s *PhotosService) resolveSection(ctx context.Context, sectionID *uuid.UUID) (*sections.Section, error) {
	if sectionID == nil {
		return nil, nil
	}
	return s.sections.GetSection(ctx, *sectionID)
}

func (s *PhotosService) getPhoto(ctx context.Context, id uuid.UUID) (*domain.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("PhotosService.getPhoto: %w", err)
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

func (s *PhotosService) getAlbum(ctx context.Context, id uuid.UUID) (*domain.Album, error) {
	album, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("PhotosService.getAlbum: %w", err)
	}
	if album == nil {
		return nil, ErrAlbumNotFound
	}
	return album, nil
}
