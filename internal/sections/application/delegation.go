package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
	"github.com/verdigris-dev/atrium/backend/internal/sections/ports"
)

// DelegationResolver answers "who currently holds owner/moderator/assistant
// power over this section". Reads go through a cache keyed by section id;
// a miss rebuilds the entry from the authoritative relations (write-through).
// Readers may observe a stale set between a membership change and the
// rebuild; the mutating path in SectionsService rebuilds before returning so
// the next read is correct.
type DelegationResolver struct {
	repo   ports.SectionRepository
	cache  ports.ManagerCache
	logger logger.Logger
}

// NewDelegationResolver creates a delegation resolver.
func NewDelegationResolver(repo ports.SectionRepository, cache ports.ManagerCache, logger logger.Logger) *DelegationResolver {
	return &DelegationResolver{repo: repo, cache: cache, logger: logger}
}

// Managers returns the current manager set for a section.
func (r *DelegationResolver) Managers(ctx context.Context, sectionID uuid.UUID) (domain.Managers, error) {
	managers, hit, err := r.cache.Get(ctx, sectionID)
	if err != nil {
		// A broken cache degrades to the source of truth.
		r.logger.Warn(ctx, "manager cache read failed, falling back to source",
			"section_id", sectionID,
			"error", err,
		)
	} else if hit {
		return managers, nil
	}
	return r.Rebuild(ctx, sectionID)
}

// Rebuild reconstructs the cached entry from the authoritative relations
// and repopulates the cache. Called on cache miss and on every manager
// mutation before the mutating call returns.
func (r *DelegationResolver) Rebuild(ctx context.Context, sectionID uuid.UUID) (domain.Managers, error) {
	managers, err := r.repo.GetManagers(ctx, sectionID)
	if err != nil {
		return domain.Managers{}, fmt.Errorf("DelegationResolver.Rebuild: %w", err)
	}
	if err := r.cache.Set(ctx, sectionID, managers); err != nil {
		r.logger.Warn(ctx, "manager cache write failed",
			"section_id", sectionID,
			"error", err,
		)
	}
	return managers, nil
}

// RoleOf derives an actor's delegated standing within a section.
func (r *DelegationResolver) RoleOf(ctx context.Context, actorID, sectionID uuid.UUID) (domain.SectionRole, error) {
	managers, err := r.Managers(ctx, sectionID)
	if err != nil {
		return domain.SectionRole{}, err
	}
	return domain.NewSectionRole(actorID, managers), nil
}

// HasCapability decides whether an actor may exercise a section capability.
// The override flag comes from LEVEL_10 grant checks and short-circuits the
// tier comparison.
func (r *DelegationResolver) HasCapability(ctx context.Context, actorID uuid.UUID, section *domain.Section, cap domain.Capability, override bool) (bool, error) {
	if override {
		return true, nil
	}
	role, err := r.RoleOf(ctx, actorID, section.ID)
	if err != nil {
		return false, err
	}
	return domain.HasSetPermission(section.Policy.RequiredTier(cap), role, false), nil
}
