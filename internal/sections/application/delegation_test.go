package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
	"github.com/verdigris-dev/atrium/backend/internal/sections/application"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

type fakeManagerRepo struct {
	managers domain.Managers
	err      error
	calls    int
}

func (f *fakeManagerRepo) Create(ctx context.Context, section *domain.Section) error { return nil }
func (f *fakeManagerRepo) Update(ctx context.Context, section *domain.Section) error { return nil }
func (f *fakeManagerRepo) Delete(ctx context.Context, id uuid.UUID) error            { return nil }
func (f *fakeManagerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	return nil, nil
}
func (f *fakeManagerRepo) GetByName(ctx context.Context, name string) (*domain.Section, error) {
	return nil, nil
}
func (f *fakeManagerRepo) GetAll(ctx context.Context) ([]*domain.Section, error) { return nil, nil }
func (f *fakeManagerRepo) GetManagers(ctx context.Context, sectionID uuid.UUID) (domain.Managers, error) {
	f.calls++
	return f.managers, f.err
}
func (f *fakeManagerRepo) ReplaceManagers(ctx context.Context, sectionID uuid.UUID, managers domain.Managers) error {
	f.managers = managers
	return nil
}

type fakeManagerCache struct {
	entries map[uuid.UUID]domain.Managers
	getErr  error
	setErr  error
	sets    int
}

func newFakeManagerCache() *fakeManagerCache {
	return &fakeManagerCache{entries: make(map[uuid.UUID]domain.Managers)}
}

func (f *fakeManagerCache) Get(ctx context.Context, sectionID uuid.UUID) (domain.Managers, bool, error) {
	if f.getErr != nil {
		return domain.Managers{}, false, f.getErr
	}
	managers, ok := f.entries[sectionID]
	return managers, ok, nil
}

func (f *fakeManagerCache) Set(ctx context.Context, sectionID uuid.UUID, managers domain.Managers) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.entries[sectionID] = managers
	return nil
}

func (f *fakeManagerCache) Invalidate(ctx context.Context, sectionID uuid.UUID) error {
	delete(f.entries, sectionID)
	return nil
}

func TestDelegationResolver_CacheMissRebuilds(t *testing.T) {
	sectionID := uuid.New()
	owner := uuid.New()
	repo := &fakeManagerRepo{managers: domain.Managers{OwnerID: owner}}
	cache := newFakeManagerCache()
	resolver := application.NewDelegationResolver(repo, cache, logger.NewBootstrapLogger())

	managers, err := resolver.Managers(context.Background(), sectionID)
	require.NoError(t, err)
	assert.Equal(t, owner, managers.OwnerID)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from the cache.
	_, err = resolver.Managers(context.Background(), sectionID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestDelegationResolver_CacheErrorDegradesToSource(t *testing.T) {
	sectionID := uuid.New()
	owner := uuid.New()
	repo := &fakeManagerRepo{managers: domain.Managers{OwnerID: owner}}
	cache := newFakeManagerCache()
	cache.getErr = errors.New("connection refused")
	resolver := application.NewDelegationResolver(repo, cache, logger.NewBootstrapLogger())

	managers, err := resolver.Managers(context.Background(), sectionID)
	require.NoError(t, err)
	assert.Equal(t, owner, managers.OwnerID)
	assert.Equal(t, 1, repo.calls)
}

func TestDelegationResolver_RebuildWriteFailureIsNonFatal(t *testing.T) {
	sectionID := uuid.New()
	repo := &fakeManagerRepo{managers: domain.Managers{OwnerID: uuid.New()}}
	cache := newFakeManagerCache()
	cache.setErr = errors.New("connection refused")
	resolver := application.NewDelegationResolver(repo, cache, logger.NewBootstrapLogger())

	_, err := resolver.Rebuild(context.Background(), sectionID)
	assert.NoError(t, err)
}

func TestDelegationResolver_RoleOf(t *testing.T) {
	sectionID := uuid.New()
	moderator := uuid.New()
	repo := &fakeManagerRepo{managers: domain.Managers{
		OwnerID:      uuid.New(),
		ModeratorIDs: []uuid.UUID{moderator},
	}}
	resolver := application.NewDelegationResolver(repo, newFakeManagerCache(), logger.NewBootstrapLogger())

	role, err := resolver.RoleOf(context.Background(), moderator, sectionID)
	require.NoError(t, err)
	assert.True(t, role.IsModerator)
	assert.True(t, role.IsManager)
	assert.False(t, role.IsOwner)
}

func TestDelegationResolver_HasCapability(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	outsider := uuid.New()

	section, err := domain.NewSection("general", "", owner, 0)
	require.NoError(t, err)

	repo := &fakeManagerRepo{managers: domain.Managers{
		OwnerID:      owner,
		ModeratorIDs: []uuid.UUID{moderator},
	}}
	resolver := application.NewDelegationResolver(repo, newFakeManagerCache(), logger.NewBootstrapLogger())
	ctx := context.Background()

	// section_mute is moderator-tier by default.
	allowed, err := resolver.HasCapability(ctx, moderator, section, domain.CapSectionMute, false)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = resolver.HasCapability(ctx, outsider, section, domain.CapSectionMute, false)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Override short-circuits the tier comparison entirely.
	allowed, err = resolver.HasCapability(ctx, outsider, section, domain.CapSetName, true)
	require.NoError(t, err)
	assert.True(t, allowed)
}
