package lifecycle_test

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
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// stubDelegation resolves capabilities from a fixed manager set, the same
// way the real resolver does but without cache or storage.
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

func grant(t *testing.T, name permission.Name, major, minor authz.Level) authz.Grant {
	t.Helper()
	g, err := authz.NewGrant(name, true, major, minor, nil)
	require.NoError(t, err)
	return g
}

func statusPtr(s lifecycle.Status) *lifecycle.Status {
	return &s
}

func allOnPolicy() *lifecycle.PolicyConfig {
	return &lifecycle.PolicyConfig{
		ArticleAudit: true, ArticleCancel: true,
		CommentAudit: true, CommentCancel: true,
		PhotoAudit: true, PhotoCancel: true,
	}
}

func newTestSection(t *testing.T, ownerID uuid.UUID) *sections.Section {
	t.Helper()
	section, err := sections.NewSection("general", "", ownerID, 0)
	require.NoError(t, err)
	return section
}

func articleMachine(policy *lifecycle.PolicyConfig, delegation lifecycle.DelegationSource) *lifecycle.Machine {
	return lifecycle.NewMachine(lifecycle.ArticleKind, authzapp.NewPermissionResolver(), delegation, policy)
}

func TestCreationStatus_AuditDisabledForcesActive(t *testing.T) {
	policy := allOnPolicy()
	policy.ArticleAudit = false
	owner := uuid.New()
	section := newTestSection(t, owner)
	section.Policy.AutoAudit = true
	machine := articleMachine(policy, &stubDelegation{managers: sections.Managers{OwnerID: owner}})

	author := newActor(t)
	status, err := machine.CreationStatus(context.Background(), author, section, statusPtr(lifecycle.StatusActive))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusActive, status)
}

func TestCreationStatus_AutoAuditHoldsPlainAuthors(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	section.Policy.AutoAudit = true
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()

	// No explicit request: held for review.
	author := newActor(t)
	status, err := machine.CreationStatus(ctx, author, section, nil)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusAudit, status)

	// The kind-wide audit grant at LEVEL_10 publishes directly.
	auditor := newActor(t, grant(t, permission.ArticleAudit, authz.Level10, authz.Level0))
	status, err = machine.CreationStatus(ctx, auditor, section, nil)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusActive, status)

	// So does the edit grant's minor LEVEL_10 axis.
	editor := newActor(t, grant(t, permission.ArticleEdit, authz.Level0, authz.Level10))
	status, err = machine.CreationStatus(ctx, editor, section, nil)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusActive, status)
}

func TestCreationStatus_ExplicitRequests(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()
	author := newActor(t)

	// Draft is always available on the article kind.
	status, err := machine.CreationStatus(ctx, author, section, statusPtr(lifecycle.StatusDraft))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDraft, status)

	// Audit can always be requested explicitly.
	status, err = machine.CreationStatus(ctx, author, section, statusPtr(lifecycle.StatusAudit))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusAudit, status)

	// Nothing is ever born recycled.
	_, err = machine.CreationStatus(ctx, author, section, statusPtr(lifecycle.StatusRecycled))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidStatus)

	// Requesting ACTIVE outright needs audit power.
	_, err = machine.CreationStatus(ctx, author, section, statusPtr(lifecycle.StatusActive))
	assert.ErrorIs(t, err, authzapp.ErrPermissionDenied)
}

func TestCreationStatus_DraftRejectedForComments(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := lifecycle.NewMachine(lifecycle.CommentKind, authzapp.NewPermissionResolver(),
		&stubDelegation{managers: sections.Managers{OwnerID: owner}}, allOnPolicy())

	_, err := machine.CreationStatus(context.Background(), newActor(t), section, statusPtr(lifecycle.StatusDraft))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidStatus)
}

func TestCreationStatus_CancelRequiresPower(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()

	_, err := machine.CreationStatus(ctx, newActor(t), section, statusPtr(lifecycle.StatusCancel))
	assert.ErrorIs(t, err, authzapp.ErrPermissionDenied)

	canceller := newActor(t, grant(t, permission.ArticleCancel, authz.Level1, authz.Level0))
	status, err := machine.CreationStatus(ctx, canceller, section, statusPtr(lifecycle.StatusCancel))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCancel, status)

	// The cancel family can be switched off globally.
	policy := allOnPolicy()
	policy.ArticleCancel = false
	offMachine := articleMachine(policy, &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	_, err = offMachine.CreationStatus(ctx, canceller, section, statusPtr(lifecycle.StatusCancel))
	assert.ErrorIs(t, err, authzapp.ErrPermissionDenied)
}

func TestUpdateStatus_ContentEditReentersReview(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()

	author := newActor(t)
	tr, err := machine.UpdateStatus(ctx, author, section, author.ID, lifecycle.StatusActive, nil, true)
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Equal(t, lifecycle.StatusAudit, tr.To)
	assert.Equal(t, int64(-1), tr.Delta)

	// Minor LEVEL_10 on the edit grant bypasses re-review.
	trusted := newActor(t, grant(t, permission.ArticleEdit, authz.Level1, authz.Level10))
	tr, err = machine.UpdateStatus(ctx, trusted, section, trusted.ID, lifecycle.StatusActive, nil, true)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Equal(t, lifecycle.StatusActive, tr.To)

	// Drafts are not under review; editing one changes nothing.
	tr, err = machine.UpdateStatus(ctx, author, section, author.ID, lifecycle.StatusDraft, nil, true)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
}

func TestUpdateStatus_AuthorSelfServiceReview(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()
	author := newActor(t)

	// The author asking for ACTIVE without audit power is held for review
	// instead of being rejected.
	active := lifecycle.StatusActive
	tr, err := machine.UpdateStatus(ctx, author, section, author.ID, lifecycle.StatusFailed, &active, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusAudit, tr.To)
	assert.True(t, tr.Changed)
	assert.Equal(t, int64(0), tr.Delta)

	// A non-author without power is rejected outright.
	stranger := newActor(t)
	_, err = machine.UpdateStatus(ctx, stranger, section, author.ID, lifecycle.StatusFailed, &active, false)
	assert.ErrorIs(t, err, authzapp.ErrPermissionDenied)
}

func TestUpdateStatus_AuditorApproval(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	section := newTestSection(t, owner)
	delegation := &stubDelegation{managers: sections.Managers{
		OwnerID:      owner,
		ModeratorIDs: []uuid.UUID{moderator},
	}}
	machine := articleMachine(allOnPolicy(), delegation)
	ctx := context.Background()

	// article_audit is manager-tier by default, so the moderator holds it.
	approver := authz.Actor{ID: moderator}
	active := lifecycle.StatusActive
	tr, err := machine.UpdateStatus(ctx, approver, section, uuid.New(), lifecycle.StatusAudit, &active, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusActive, tr.To)
	assert.Equal(t, int64(1), tr.Delta)

	failed := lifecycle.StatusFailed
	tr, err = machine.UpdateStatus(ctx, approver, section, uuid.New(), lifecycle.StatusAudit, &failed, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusFailed, tr.To)
	assert.Equal(t, int64(0), tr.Delta)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})

	author := newActor(t)
	current := lifecycle.StatusDraft
	tr, err := machine.UpdateStatus(context.Background(), author, section, author.ID, current, &current, false)
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Equal(t, int64(0), tr.Delta)
}

func TestUpdateStatus_RecycledAndDraftGates(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()
	author := newActor(t)

	// Authors manage their own recycle bin.
	recycled := lifecycle.StatusRecycled
	tr, err := machine.UpdateStatus(ctx, author, section, author.ID, lifecycle.StatusActive, &recycled, false)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusRecycled, tr.To)
	assert.Equal(t, int64(-1), tr.Delta)

	// Strangers need the delegated capability.
	stranger := newActor(t)
	_, err = machine.UpdateStatus(ctx, stranger, section, author.ID, lifecycle.StatusActive, &recycled, false)
	assert.ErrorIs(t, err, authzapp.ErrPermissionDenied)

	draft := lifecycle.StatusDraft
	_, err = machine.UpdateStatus(ctx, stranger, section, author.ID, lifecycle.StatusActive, &draft, false)
	assert.ErrorIs(t, err, authzapp.ErrPermissionDenied)
}

func TestCanDelete(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	machine := articleMachine(allOnPolicy(), &stubDelegation{managers: sections.Managers{OwnerID: owner}})
	ctx := context.Background()

	author := newActor(t, grant(t, permission.ArticleDelete, authz.Level1, authz.Level0))
	ok, err := machine.CanDelete(ctx, author, section, author.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	// LEVEL_1 only covers the actor's own resources.
	ok, err = machine.CanDelete(ctx, author, section, uuid.New(), true)
	require.NoError(t, err)
	assert.False(t, ok)

	admin := newActor(t, grant(t, permission.ArticleDelete, authz.Level10, authz.Level0))
	ok, err = machine.CanDelete(ctx, admin, section, uuid.New(), true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanDelete_SoftRequiresCancelFlag(t *testing.T) {
	owner := uuid.New()
	section := newTestSection(t, owner)
	policy := allOnPolicy()
	policy.ArticleCancel = false
	machine := articleMachine(policy, &stubDelegation{managers: sections.Managers{OwnerID: owner}})

	author := newActor(t, grant(t, permission.ArticleCancel, authz.Level10, authz.Level0))
	ok, err := machine.CanDelete(context.Background(), author, section, author.ID, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActiveDelta(t *testing.T) {
	assert.Equal(t, int64(1), lifecycle.ActiveDelta(lifecycle.StatusAudit, lifecycle.StatusActive))
	assert.Equal(t, int64(-1), lifecycle.ActiveDelta(lifecycle.StatusActive, lifecycle.StatusCancel))
	assert.Equal(t, int64(0), lifecycle.ActiveDelta(lifecycle.StatusDraft, lifecycle.StatusAudit))
	assert.Equal(t, int64(0), lifecycle.ActiveDelta(lifecycle.StatusActive, lifecycle.StatusActive))
}
