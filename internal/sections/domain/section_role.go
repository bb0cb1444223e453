package domain

import "github.com/google/uuid"

// SectionRole is an actor's delegated standing within one section.
// Controller covers owner and moderator; Manager covers all three.
type SectionRole struct {
	IsOwner      bool
	IsModerator  bool
	IsAssistant  bool
	IsController bool
	IsManager    bool
}

// NewSectionRole derives the delegated standing of actorID from a manager
// set.
func NewSectionRole(actorID uuid.UUID, managers Managers) SectionRole {
	role := SectionRole{
		IsOwner:     managers.OwnerID == actorID,
		IsModerator: managers.IsModerator(actorID),
		IsAssistant: managers.IsAssistant(actorID),
	}
	role.IsController = role.IsOwner || role.IsModerator
	role.IsManager = role.IsController || role.IsAssistant
	return role
}

// HasSetPermission decides whether a delegated role satisfies a required
// tier. OWNER and MODERATOR are siblings, not a hierarchy; MANAGER accepts
// any of the three. The override flag short-circuits everything and is fed
// by LEVEL_10 grant checks upstream.
func HasSetPermission(required Tier, role SectionRole, override bool) bool {
	if override {
		return true
	}
	switch required {
	case TierOwner:
		return role.IsOwner
	case TierModerator:
		return role.IsModerator
	case TierManager:
		return role.IsManager
	default:
		return false
	}
}
