package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
)

func TestNewGrant(t *testing.T) {
	value := int64(300)
	grant, err := domain.NewGrant(permission.ReadLevel, true, domain.Level1, domain.Level0, &value)
	require.NoError(t, err)
	assert.Equal(t, permission.ReadLevel, grant.Name)
	assert.True(t, grant.Enabled)
	assert.Equal(t, domain.Level1, grant.Major)
	assert.Equal(t, domain.Level0, grant.Minor)
	require.NotNil(t, grant.Value)
	assert.Equal(t, int64(300), *grant.Value)
}

func TestNewGrant_UnknownPermission(t *testing.T) {
	_, err := domain.NewGrant("article:fly", true, domain.Level1, domain.Level1, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownPermission)
}

func TestNewGrant_InvalidLevel(t *testing.T) {
	// Levels are the 0,100..1000 ladder; anything off it is rejected.
	_, err := domain.NewGrant(permission.ArticleGet, true, domain.Level(150), domain.Level0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)

	_, err = domain.NewGrant(permission.ArticleGet, true, domain.Level0, domain.Level(-100), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)
}

func TestGrantSet_Resolve_MissingGrant(t *testing.T) {
	set := make(domain.GrantSet)

	// A missing grant is indistinguishable from an explicitly disabled one.
	grant := set.Resolve(permission.ArticleEdit)
	assert.False(t, grant.Enabled)
	assert.Equal(t, domain.Level0, grant.Major)
	assert.Equal(t, domain.Level0, grant.Minor)
	assert.Nil(t, grant.Value)
}

func TestGrantSet_SetAndResolve(t *testing.T) {
	set := make(domain.GrantSet)
	grant, err := domain.NewGrant(permission.ArticleEdit, true, domain.Level10, domain.Level1, nil)
	require.NoError(t, err)

	set.Set(grant)
	resolved := set.Resolve(permission.ArticleEdit)
	assert.True(t, resolved.Enabled)
	assert.Equal(t, domain.Level10, resolved.Major)
}

func TestLevel_GE(t *testing.T) {
	assert.True(t, domain.Level10.GE(domain.Level1))
	assert.True(t, domain.Level1.GE(domain.Level1))
	assert.False(t, domain.Level0.GE(domain.Level1))
}

func TestParseLevel(t *testing.T) {
	level, err := domain.ParseLevel(1000)
	require.NoError(t, err)
	assert.Equal(t, domain.Level10, level)

	_, err = domain.ParseLevel(450)
	assert.Error(t, err)

	_, err = domain.ParseLevel(1100)
	assert.Error(t, err)
}

func TestActor_GrantWithoutRole(t *testing.T) {
	actor := domain.Actor{ID: uuid.New()}

	grant := actor.Grant(permission.ArticleGet)
	assert.False(t, grant.Enabled)
	assert.Equal(t, domain.Level0, grant.Major)
}

func TestActor_ReadLevel(t *testing.T) {
	role, err := domain.NewRole("member", "standard member", 100)
	require.NoError(t, err)

	actor := domain.Actor{ID: uuid.New(), Role: role}
	assert.Equal(t, 0, actor.ReadLevel())

	value := int64(500)
	grant, err := domain.NewGrant(permission.ReadLevel, true, domain.Level1, domain.Level0, &value)
	require.NoError(t, err)
	role.SetGrant(grant)

	assert.Equal(t, 500, actor.ReadLevel())
}
