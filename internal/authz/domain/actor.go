package domain

import (
	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
)

// Actor is an authenticated principal as handed over by the authentication
// collaborator: an identity plus its resolved role. The core never issues
// or verifies credentials; it only consumes this shape.
type Actor struct {
	ID            uuid.UUID
	IdentityToken string
	Role          *Role
	Rank          int
	// Groups are opaque membership labels issued by the account
	// collaborator, matched against section allow-lists.
	Groups []string
}

// Grant resolves the actor's grant for a permission name through its role.
// Actors without a role resolve everything to the disabled grant.
func (a Actor) Grant(name permission.Name) Grant {
	if a.Role == nil {
		return Grant{Name: name, Enabled: false, Major: Level0, Minor: Level0}
	}
	return a.Role.Grant(name)
}

// ReadLevel returns the actor's numeric read level, taken from the value of
// the read:level grant. Actors without the grant read at zero.
func (a Actor) ReadLevel() int {
	grant := a.Grant(permission.ReadLevel)
	if grant.Value == nil {
		return 0
	}
	return int(*grant.Value)
}
