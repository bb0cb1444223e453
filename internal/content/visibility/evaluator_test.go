package visibility_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	"github.com/verdigris-dev/atrium/backend/internal/content/visibility"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

type stubDelegation struct {
	managers sections.Managers
}

func (s *stubDelegation) HasCapability(ctx context.Context, actorID uuid.UUID, section *sections.Section, cap sections.Capability, override bool) (bool, error) {
	if override {
		return true, nil
	}
	role := sections.NewSectionRole(actorID, s.managers)
	return sections.HasSetPermission(section.Policy.RequiredTier(cap), role, false), nil
}

func (s *stubDelegation) RoleOf(ctx context.Context, actorID, sectionID uuid.UUID) (sections.SectionRole, error) {
	return sections.NewSectionRole(actorID, s.managers), nil
}

func newActor(t *testing.T, grants ...authz.Grant) authz.Actor {
	t.Helper()
	role, err := authz.NewRole("fixture", "", 100)
	require.NoError(t, err)
	for _, g := range grants {
		role.SetGrant(g)
	}
	return authz.Actor{ID: uuid.New(), Role: role}
}

func grant(t *testing.T, name permission.Name, major, minor authz.Level, value *int64) authz.Grant {
	t.Helper()
	g, err := authz.NewGrant(name, true, major, minor, value)
	require.NoError(t, err)
	return g
}

func newEvaluator(managers sections.Managers) *visibility.Evaluator {
	return visibility.NewEvaluator(lifecycle.ArticleKind, authzapp.NewPermissionResolver(), &stubDelegation{managers: managers})
}

func newTestSection(t *testing.T, ownerID uuid.UUID) *sections.Section {
	t.Helper()
	section, err := sections.NewSection("general", "", ownerID, 0)
	require.NoError(t, err)
	return section
}

func TestCanGet_AuthorException(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner})
	ctx := context.Background()
	author := newActor(t)

	// Authors see their own work in any non-cancelled status, even private
	// drafts held for audit.
	for _, status := range []lifecycle.Status{
		lifecycle.StatusActive, lifecycle.StatusDraft,
		lifecycle.StatusAudit, lifecycle.StatusFailed, lifecycle.StatusRecycled,
	} {
		d, err := eval.CanGet(ctx, author, section, visibility.View{
			AuthorID: author.ID,
			Status:   status,
			Privacy:  lifecycle.PrivacyPrivate,
		})
		require.NoError(t, err)
		assert.True(t, d.Visible, "status %v", status)
		assert.True(t, d.CountsAsRead, "status %v", status)
	}

	// Cancellation revokes the author exception.
	d, err := eval.CanGet(ctx, author, section, visibility.View{
		AuthorID: author.ID,
		Status:   lifecycle.StatusCancel,
	})
	require.NoError(t, err)
	assert.False(t, d.Visible)
}

func TestCanGet_KindWideOverride(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner})

	admin := newActor(t, grant(t, permission.ArticleGet, authz.Level10, authz.Level0, nil))
	d, err := eval.CanGet(context.Background(), admin, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusCancel,
		Privacy:  lifecycle.PrivacyPrivate,
	})
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.True(t, d.CountsAsRead)
}

func TestCanGet_ActivePrivacyAndReadLevel(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner})
	ctx := context.Background()
	reader := newActor(t)

	// Public active content at read level zero counts as a read.
	d, err := eval.CanGet(ctx, reader, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusActive,
		Privacy:  lifecycle.PrivacyPublic,
	})
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.True(t, d.CountsAsRead)

	// Protected content stays visible but never counts.
	d, err = eval.CanGet(ctx, reader, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusActive,
		Privacy:  lifecycle.PrivacyProtected,
	})
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.False(t, d.CountsAsRead)

	// Private content is hidden from strangers.
	d, err = eval.CanGet(ctx, reader, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusActive,
		Privacy:  lifecycle.PrivacyPrivate,
	})
	require.NoError(t, err)
	assert.False(t, d.Visible)

	// Minor LEVEL_10 on the get grant ignores privacy.
	insider := newActor(t, grant(t, permission.ArticleGet, authz.Level0, authz.Level10, nil))
	d, err = eval.CanGet(ctx, insider, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusActive,
		Privacy:  lifecycle.PrivacyPrivate,
	})
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.True(t, d.CountsAsRead)
}

func TestCanGet_ReadLevelFloor(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner})
	ctx := context.Background()

	view := visibility.View{
		AuthorID:  uuid.New(),
		Status:    lifecycle.StatusActive,
		Privacy:   lifecycle.PrivacyPublic,
		ReadLevel: 500,
	}

	// Below the floor the view is the non-counting fallback.
	low := newActor(t)
	d, err := eval.CanGet(ctx, low, section, view)
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.False(t, d.CountsAsRead)

	levelValue := int64(500)
	high := newActor(t, grant(t, permission.ReadLevel, authz.Level1, authz.Level0, &levelValue))
	d, err = eval.CanGet(ctx, high, section, view)
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.True(t, d.CountsAsRead)

	// The read-level override works without any scalar value.
	override := newActor(t, grant(t, permission.ReadLevel, authz.Level10, authz.Level0, nil))
	d, err = eval.CanGet(ctx, override, section, view)
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.True(t, d.CountsAsRead)
}

func TestCanGet_ModeratedStatuses(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner, ModeratorIDs: []uuid.UUID{moderator}})
	ctx := context.Background()

	// A moderator holds the audit capability and may inspect held content,
	// but the privileged view never counts as a read.
	mod := authz.Actor{ID: moderator}
	d, err := eval.CanGet(ctx, mod, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusAudit,
	})
	require.NoError(t, err)
	assert.True(t, d.Visible)
	assert.False(t, d.CountsAsRead)

	// Strangers see nothing; callers surface this as NotFound.
	stranger := newActor(t)
	d, err = eval.CanGet(ctx, stranger, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusAudit,
	})
	require.NoError(t, err)
	assert.False(t, d.Visible)

	d, err = eval.CanGet(ctx, stranger, section, visibility.View{
		AuthorID: uuid.New(),
		Status:   lifecycle.StatusRecycled,
	})
	require.NoError(t, err)
	assert.False(t, d.Visible)
}

func TestCanViewSection(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner, ModeratorIDs: []uuid.UUID{moderator}})
	ctx := context.Background()

	reader := newActor(t)
	ok, err := eval.CanViewSection(ctx, reader, section)
	require.NoError(t, err)
	assert.True(t, ok)

	// Hidden sections admit managers only.
	section.Status = sections.SectionHide
	ok, err = eval.CanViewSection(ctx, reader, section)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = eval.CanViewSection(ctx, authz.Actor{ID: moderator}, section)
	require.NoError(t, err)
	assert.True(t, ok)

	// Cancelled sections admit whoever can flip the status back; set_status
	// is owner-tier by default, so the moderator is out.
	section.Status = sections.SectionCancel
	ok, err = eval.CanViewSection(ctx, authz.Actor{ID: moderator}, section)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = eval.CanViewSection(ctx, authz.Actor{ID: owner}, section)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewSection_AllowListsAndReadLevel(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	eval := newEvaluator(sections.Managers{OwnerID: owner})
	ctx := context.Background()

	allowedRole, err := authz.NewRole("insiders", "", 100)
	require.NoError(t, err)
	section.AllowRoleIDs = []uuid.UUID{allowedRole.ID}

	outsider := newActor(t)
	ok, err := eval.CanViewSection(ctx, outsider, section)
	require.NoError(t, err)
	assert.False(t, ok)

	insider := authz.Actor{ID: uuid.New(), Role: allowedRole}
	ok, err = eval.CanViewSection(ctx, insider, section)
	require.NoError(t, err)
	assert.True(t, ok)

	// The read-level floor applies after the allow-lists.
	section.ReadLevel = 300
	ok, err = eval.CanViewSection(ctx, insider, section)
	require.NoError(t, err)
	assert.False(t, ok)
}
