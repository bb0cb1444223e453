package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
	"github.com/verdigris-dev/atrium/backend/internal/sections/ports"
)

// Error definitions for section operations
var (
	ErrSectionNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeSectionNotFound,
		"section not found",
		http.StatusNotFound,
	)
	ErrSectionNameExists = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeSectionNameExists,
		"section name already exists",
		http.StatusConflict,
	)
	ErrInvalidSectionData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid section data",
		http.StatusBadRequest,
	)
)

// SectionsService manages sections, their policy records and their
// delegated-role sets. Every manager mutation goes through updateManagers,
// which writes the relations and rebuilds the cache entry before returning.
type SectionsService struct {
	repo       ports.SectionRepository
	delegation *DelegationResolver
	resolver   *authzapp.PermissionResolver
	logger     logger.Logger
}

// NewSectionsService creates a new sections service.
func NewSectionsService(
	repo ports.SectionRepository,
	delegation *DelegationResolver,
	resolver *authzapp.PermissionResolver,
	logger logger.Logger,
) *SectionsService {
	return &SectionsService{
		repo:       repo,
		delegation: delegation,
		resolver:   resolver,
		logger:     logger,
	}
}

// CreateSectionParams contains parameters for creating a section.
type CreateSectionParams struct {
	Name        string
	Description string
	ReadLevel   int
}

// CreateSection creates a section with its policy record; the creator
// becomes the owner.
func (s *SectionsService) CreateSection(ctx context.Context, actor authz.Actor, params CreateSectionParams) (*domain.Section, error) {
	if err := s.resolver.Require(actor, permission.SectionCreate); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(ctx, params.Name); err == nil && existing != nil {
		return nil, ErrSectionNameExists
	}

	section, err := domain.NewSection(params.Name, params.Description, actor.ID, params.ReadLevel)
	if err != nil {
		return nil, ErrInvalidSectionData.WithDetails(err.Error())
	}

	if err := s.repo.Create(ctx, section); err != nil {
		s.logger.Error(ctx, "failed to create section", "name", params.Name, "error", err)
		return nil, fmt.Errorf("SectionsService.CreateSection: %w", err)
	}

	// Prime the delegation cache so the first read hits.
	if _, err := s.delegation.Rebuild(ctx, section.ID); err != nil {
		s.logger.Warn(ctx, "failed to prime manager cache", "section_id", section.ID, "error", err)
	}

	s.logger.Info(ctx, "section created",
		"section_id", section.ID,
		"name", section.Name,
		"owner_id", actor.ID,
	)
	return section, nil
}

// UpdateSectionParams carries optional structural changes.
type UpdateSectionParams struct {
	Name        *string
	Description *string
	ReadLevel   *int
	Status      *domain.SectionStatus
}

// UpdateSection applies structural changes, each gated by its own
// capability (set_name, set_description, set_read_level, set_status).
func (s *SectionsService) UpdateSection(ctx context.Context, actor authz.Actor, sectionID uuid.UUID, params UpdateSectionParams) (*domain.Section, error) {
	section, err := s.getSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	override := s.resolver.MajorGE(actor, permission.SectionEdit, authz.Level10)

	type change struct {
		cap   domain.Capability
		apply func() error
		skip  bool
	}
	changes := []change{
		{cap: domain.CapSetName, skip: params.Name == nil, apply: func() error {
			if *params.Name == "" {
				return domain.ErrSectionNameEmpty
			}
			if existing, err := s.repo.GetByName(ctx, *params.Name); err == nil && existing != nil && existing.ID != sectionID {
				return ErrSectionNameExists
			}
			section.Name = *params.Name
			return nil
		}},
		{cap: domain.CapSetDescription, skip: params.Description == nil, apply: func() error {
			section.Description = *params.Description
			return nil
		}},
		{cap: domain.CapSetReadLevel, skip: params.ReadLevel == nil, apply: func() error {
			if *params.ReadLevel < 0 {
				return domain.ErrNegativeReadLevel
			}
			section.ReadLevel = *params.ReadLevel
			return nil
		}},
		{cap: domain.CapSetStatus, skip: params.Status == nil, apply: func() error {
			if !params.Status.IsValid() {
				return ErrInvalidSectionData
			}
			section.Status = *params.Status
			return nil
		}},
	}

	for _, c := range changes {
		if c.skip {
			continue
		}
		allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, c.cap, override)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, authzapp.ErrPermissionDenied
		}
		if err := c.apply(); err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				return nil, appErr
			}
			return nil, ErrInvalidSectionData.WithDetails(err.Error())
		}
	}

	if err := s.repo.Update(ctx, section); err != nil {
		s.logger.Error(ctx, "failed to update section", "section_id", sectionID, "error", err)
		return nil, fmt.Errorf("SectionsService.UpdateSection: %w", err)
	}

	s.logger.Info(ctx, "section updated", "section_id", sectionID)
	return section, nil
}

// UpdatePolicyParams carries a partial policy update; nil fields are left
// unchanged. Capability entries are merged into the existing map.
type UpdatePolicyParams struct {
	Capabilities      map[domain.Capability]domain.Tier
	AutoAudit         *bool
	ArticleMute       *bool
	ReplyMute         *bool
	MaxArticles       *int
	MaxArticlesOneDay *int
}

// UpdatePolicy changes the capability→tier map and the policy scalars.
// Requires set_policy.
func (s *SectionsService) UpdatePolicy(ctx context.Context, actor authz.Actor, sectionID uuid.UUID, params UpdatePolicyParams) (*domain.Section, error) {
	section, err := s.getSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	override := s.resolver.MajorGE(actor, permission.SectionEdit, authz.Level10)
	allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, domain.CapSetPolicy, override)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, authzapp.ErrPermissionDenied
	}

	for cap, tier := range params.Capabilities {
		if tier < domain.TierOwner || tier > domain.TierManager {
			return nil, ErrInvalidSectionData.WithDetails(fmt.Sprintf("invalid tier %d for capability %s", tier, cap))
		}
		section.Policy.Capabilities[cap] = tier
	}
	if params.AutoAudit != nil {
		section.Policy.AutoAudit = *params.AutoAudit
	}
	if params.ArticleMute != nil {
		section.Policy.ArticleMute = *params.ArticleMute
	}
	if params.ReplyMute != nil {
		section.Policy.ReplyMute = *params.ReplyMute
	}
	if params.MaxArticles != nil {
		if *params.MaxArticles < 0 {
			return nil, ErrInvalidSectionData.WithDetails("max articles cannot be negative")
		}
		section.Policy.MaxArticles = *params.MaxArticles
	}
	if params.MaxArticlesOneDay != nil {
		if *params.MaxArticlesOneDay < 0 {
			return nil, ErrInvalidSectionData.WithDetails("max articles per day cannot be negative")
		}
		section.Policy.MaxArticlesOneDay = *params.MaxArticlesOneDay
	}

	if err := s.repo.Update(ctx, section); err != nil {
		s.logger.Error(ctx, "failed to update section policy", "section_id", sectionID, "error", err)
		return nil, fmt.Errorf("SectionsService.UpdatePolicy: %w", err)
	}

	s.logger.Info(ctx, "section policy updated", "section_id", sectionID)
	return section, nil
}

// SetModerators replaces the moderator set. Requires set_moderator.
func (s *SectionsService) SetModerators(ctx context.Context, actor authz.Actor, sectionID uuid.UUID, moderatorIDs []uuid.UUID) (domain.Managers, error) {
	return s.mutateManagers(ctx, actor, sectionID, domain.CapSetModerator, func(m *domain.Managers) {
		m.ModeratorIDs = moderatorIDs
	})
}

// SetAssistants replaces the assistant set. Requires set_assistant.
func (s *SectionsService) SetAssistants(ctx context.Context, actor authz.Actor, sectionID uuid.UUID, assistantIDs []uuid.UUID) (domain.Managers, error) {
	return s.mutateManagers(ctx, actor, sectionID, domain.CapSetAssistant, func(m *domain.Managers) {
		m.AssistantIDs = assistantIDs
	})
}

// TransferOwner reassigns the section owner. Owner-tier only.
func (s *SectionsService) TransferOwner(ctx context.Context, actor authz.Actor, sectionID, newOwnerID uuid.UUID) (domain.Managers, error) {
	return s.mutateManagers(ctx, actor, sectionID, domain.CapSetModerator, func(m *domain.Managers) {
		m.OwnerID = newOwnerID
	})
}

// mutateManagers is the single entry point for delegated-role mutations: it
// writes the authoritative relations and rebuilds the cache entry in the
// same call, so invalidation cannot be missed at a call site.
func (s *SectionsService) mutateManagers(ctx context.Context, actor authz.Actor, sectionID uuid.UUID, cap domain.Capability, mutate func(*domain.Managers)) (domain.Managers, error) {
	section, err := s.getSection(ctx, sectionID)
	if err != nil {
		return domain.Managers{}, err
	}

	override := s.resolver.MajorGE(actor, permission.SectionEdit, authz.Level10)
	allowed, err := s.delegation.HasCapability(ctx, actor.ID, section, cap, override)
	if err != nil {
		return domain.Managers{}, err
	}
	if !allowed {
		return domain.Managers{}, authzapp.ErrPermissionDenied
	}

	managers, err := s.repo.GetManagers(ctx, sectionID)
	if err != nil {
		return domain.Managers{}, fmt.Errorf("SectionsService.mutateManagers (read): %w", err)
	}
	mutate(&managers)

	if err := s.repo.ReplaceManagers(ctx, sectionID, managers); err != nil {
		s.logger.Error(ctx, "failed to replace section managers", "section_id", sectionID, "error", err)
		return domain.Managers{}, fmt.Errorf("SectionsService.mutateManagers (write): %w", err)
	}

	// Rebuild before returning; the next read must see the new set.
	rebuilt, err := s.delegation.Rebuild(ctx, sectionID)
	if err != nil {
		return managers, fmt.Errorf("SectionsService.mutateManagers (rebuild): %w", err)
	}

	s.logger.Info(ctx, "section managers updated",
		"section_id", sectionID,
		"moderators", len(rebuilt.ModeratorIDs),
		"assistants", len(rebuilt.AssistantIDs),
	)
	return rebuilt, nil
}

// GetSection retrieves a section by ID.
func (s *SectionsService) GetSection(ctx context.Context, sectionID uuid.UUID) (*domain.Section, error) {
	return s.getSection(ctx, sectionID)
}

// ListSections retrieves all sections.
func (s *SectionsService) ListSections(ctx context.Context) ([]*domain.Section, error) {
	sections, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to list sections", "error", err)
		return nil, fmt.Errorf("SectionsService.ListSections: %w", err)
	}
	return sections, nil
}

// DeleteSection removes a section. Gated by the global section:delete
// permission rather than delegation; owners do not get to erase the board.
func (s *SectionsService) DeleteSection(ctx context.Context, actor authz.Actor, sectionID uuid.UUID) error {
	if err := s.resolver.Require(actor, permission.SectionDelete); err != nil {
		return err
	}
	if _, err := s.getSection(ctx, sectionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sectionID); err != nil {
		s.logger.Error(ctx, "failed to delete section", "section_id", sectionID, "error", err)
		return fmt.Errorf("SectionsService.DeleteSection: %w", err)
	}
	if err := s.delegation.cache.Invalidate(ctx, sectionID); err != nil {
		s.logger.Warn(ctx, "failed to drop manager cache entry", "section_id", sectionID, "error", err)
	}
	s.logger.Info(ctx, "section deleted", "section_id", sectionID)
	return nil
}

func (s *SectionsService) getSection(ctx context.Context, sectionID uuid.UUID) (*domain.Section, error) {
	section, err := s.repo.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, ErrSectionNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("SectionsService.getSection: %w", err)
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}
	return section, nil
}
