package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

func TestNewSectionRole(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	assistant := uuid.New()
	outsider := uuid.New()

	managers := domain.Managers{
		OwnerID:      owner,
		ModeratorIDs: []uuid.UUID{moderator},
		AssistantIDs: []uuid.UUID{assistant},
	}

	ownerRole := domain.NewSectionRole(owner, managers)
	assert.True(t, ownerRole.IsOwner)
	assert.True(t, ownerRole.IsController)
	assert.True(t, ownerRole.IsManager)
	assert.False(t, ownerRole.IsModerator)

	modRole := domain.NewSectionRole(moderator, managers)
	assert.True(t, modRole.IsModerator)
	assert.True(t, modRole.IsController)
	assert.True(t, modRole.IsManager)
	assert.False(t, modRole.IsOwner)

	asstRole := domain.NewSectionRole(assistant, managers)
	assert.True(t, asstRole.IsAssistant)
	assert.False(t, asstRole.IsController)
	assert.True(t, asstRole.IsManager)

	outRole := domain.NewSectionRole(outsider, managers)
	assert.False(t, outRole.IsManager)
}

func TestHasSetPermission(t *testing.T) {
	owner := domain.SectionRole{IsOwner: true, IsController: true, IsManager: true}
	moderator := domain.SectionRole{IsModerator: true, IsController: true, IsManager: true}
	assistant := domain.SectionRole{IsAssistant: true, IsManager: true}
	outsider := domain.SectionRole{}

	tests := []struct {
		name     string
		required domain.Tier
		role     domain.SectionRole
		want     bool
	}{
		// OWNER and MODERATOR are siblings: a moderator never satisfies an
		// owner-tier requirement and vice versa.
		{"owner tier, owner", domain.TierOwner, owner, true},
		{"owner tier, moderator", domain.TierOwner, moderator, false},
		{"owner tier, assistant", domain.TierOwner, assistant, false},
		{"moderator tier, moderator", domain.TierModerator, moderator, true},
		{"moderator tier, owner", domain.TierModerator, owner, false},
		{"moderator tier, assistant", domain.TierModerator, assistant, false},
		// MANAGER accepts all three standings.
		{"manager tier, owner", domain.TierManager, owner, true},
		{"manager tier, moderator", domain.TierManager, moderator, true},
		{"manager tier, assistant", domain.TierManager, assistant, true},
		{"manager tier, outsider", domain.TierManager, outsider, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.HasSetPermission(tt.required, tt.role, false))
		})
	}
}

func TestHasSetPermission_Override(t *testing.T) {
	outsider := domain.SectionRole{}
	assert.True(t, domain.HasSetPermission(domain.TierOwner, outsider, true))

	assert.False(t, domain.HasSetPermission(domain.Tier(99), domain.SectionRole{IsOwner: true}, false))
}

func TestPolicy_RequiredTier(t *testing.T) {
	policy := domain.DefaultPolicy()

	assert.Equal(t, domain.TierOwner, policy.RequiredTier(domain.CapSetName))
	assert.Equal(t, domain.TierModerator, policy.RequiredTier(domain.CapSetAssistant))

	// Unknown capabilities fall back to the most restrictive tier.
	assert.Equal(t, domain.TierOwner, policy.RequiredTier(domain.Capability("made_up")))
}

func TestSection_AllowLists(t *testing.T) {
	roleID := uuid.New()
	section, err := domain.NewSection("general", "open discussion", uuid.New(), 0)
	assert.NoError(t, err)

	// Empty allow-lists admit everyone.
	assert.True(t, section.AllowsRole(roleID))
	assert.True(t, section.AllowsAnyGroup(nil))

	section.AllowRoleIDs = []uuid.UUID{roleID}
	section.AllowGroups = []string{"staff"}

	assert.True(t, section.AllowsRole(roleID))
	assert.False(t, section.AllowsRole(uuid.New()))
	assert.True(t, section.AllowsAnyGroup([]string{"guest", "staff"}))
	assert.False(t, section.AllowsAnyGroup([]string{"guest"}))
}
