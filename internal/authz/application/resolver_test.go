package application_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/authz/application"
	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
)

func actorWithGrant(t *testing.T, name permission.Name, enabled bool, major, minor domain.Level, value *int64) domain.Actor {
	t.Helper()
	role, err := domain.NewRole("test-role", "fixture", 100)
	require.NoError(t, err)
	grant, err := domain.NewGrant(name, enabled, major, minor, value)
	require.NoError(t, err)
	role.SetGrant(grant)
	return domain.Actor{ID: uuid.New(), Role: role}
}

func TestResolver_Levels_MissingGrant(t *testing.T) {
	resolver := application.NewPermissionResolver()
	actor := domain.Actor{ID: uuid.New()}

	major, minor := resolver.Levels(actor, permission.ArticleGet)
	assert.Equal(t, domain.Level0, major)
	assert.Equal(t, domain.Level0, minor)
	assert.Nil(t, resolver.Value(actor, permission.ArticleGet))
	assert.False(t, resolver.Enabled(actor, permission.ArticleGet))
}

func TestResolver_Require(t *testing.T) {
	resolver := application.NewPermissionResolver()

	enabled := actorWithGrant(t, permission.SectionCreate, true, domain.Level1, domain.Level0, nil)
	assert.NoError(t, resolver.Require(enabled, permission.SectionCreate))

	disabled := actorWithGrant(t, permission.SectionCreate, false, domain.Level1, domain.Level0, nil)
	assert.ErrorIs(t, resolver.Require(disabled, permission.SectionCreate), application.ErrPermissionDenied)

	// Missing grant denies the same way a disabled one does.
	missing := domain.Actor{ID: uuid.New()}
	assert.ErrorIs(t, resolver.Require(missing, permission.SectionCreate), application.ErrPermissionDenied)
}

func TestResolver_Require_UnknownPermission(t *testing.T) {
	resolver := application.NewPermissionResolver()
	actor := domain.Actor{ID: uuid.New()}

	err := resolver.Require(actor, "nonsense:perm")
	require.Error(t, err)
	assert.NotErrorIs(t, err, application.ErrPermissionDenied)
}

func TestResolver_MajorGE_MinorGE(t *testing.T) {
	resolver := application.NewPermissionResolver()
	actor := actorWithGrant(t, permission.ArticleEdit, true, domain.Level10, domain.Level1, nil)

	assert.True(t, resolver.MajorGE(actor, permission.ArticleEdit, domain.Level10))
	assert.True(t, resolver.MinorGE(actor, permission.ArticleEdit, domain.Level1))
	assert.False(t, resolver.MinorGE(actor, permission.ArticleEdit, domain.Level10))

	// The two axes are independent; neither implies the other.
	assert.False(t, resolver.MajorGE(actor, permission.ArticleGet, domain.Level1))
}
