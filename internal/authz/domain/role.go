package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
)

// Error definitions for role operations
var (
	ErrRoleNameEmpty     = errors.New("role name cannot be empty")
	ErrNegativeRank      = errors.New("role rank cannot be negative")
	ErrDefaultRoleDelete = errors.New("the default role cannot be deleted")
)

// Role is an entry in the role registry: a named rank plus a grant table.
// Exactly one role is the default at any time; members of a deleted role
// are reassigned to it.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	Rank        int
	IsDefault   bool
	Grants      GrantSet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRole creates a new Role with an empty grant table.
func NewRole(name, description string, rank int) (*Role, error) {
	if name == "" {
		return nil, ErrRoleNameEmpty
	}
	if rank < 0 {
		return nil, ErrNegativeRank
	}
	now := time.Now()
	return &Role{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Rank:        rank,
		Grants:      make(GrantSet),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Grant resolves the role's grant for a permission name. Missing grants
// resolve to the disabled all-zero grant.
func (r *Role) Grant(name permission.Name) Grant {
	return r.Grants.Resolve(name)
}

// SetGrant inserts or replaces a grant on the role.
func (r *Role) SetGrant(grant Grant) {
	if r.Grants == nil {
		r.Grants = make(GrantSet)
	}
	r.Grants.Set(grant)
	r.UpdatedAt = time.Now()
}

// ReplaceGrants swaps the whole grant table.
func (r *Role) ReplaceGrants(grants GrantSet) {
	r.Grants = grants.Clone()
	r.UpdatedAt = time.Now()
}

// ValidateDeletion checks if the role can be deleted. The default role is
// the reassignment target for orphaned members and must always exist.
func (r *Role) ValidateDeletion() error {
	if r.IsDefault {
		return ErrDefaultRoleDelete
	}
	return nil
}
