package domain

import (
	"errors"
	"fmt"

	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
)

// Error definitions for grant operations
var (
	ErrInvalidLevel      = errors.New("level is not on the permission ladder")
	ErrUnknownPermission = errors.New("unknown permission name")
)

// Grant is the effective value of one (role, permission) pair. Major and
// minor are independent ordinal axes; Value is an open-ended scalar (e.g. a
// quota or a read level) with no ladder semantics.
type Grant struct {
	Name    permission.Name
	Enabled bool
	Major   Level
	Minor   Level
	Value   *int64
}

// NewGrant creates a validated grant.
func NewGrant(name permission.Name, enabled bool, major, minor Level, value *int64) (Grant, error) {
	if !permission.IsValid(name) {
		return Grant{}, fmt.Errorf("%w: %s", ErrUnknownPermission, name)
	}
	if !major.IsValid() {
		return Grant{}, fmt.Errorf("%w: major %d", ErrInvalidLevel, major)
	}
	if !minor.IsValid() {
		return Grant{}, fmt.Errorf("%w: minor %d", ErrInvalidLevel, minor)
	}
	return Grant{Name: name, Enabled: enabled, Major: major, Minor: minor, Value: value}, nil
}

// GrantSet holds a role's grants keyed by permission name.
type GrantSet map[permission.Name]Grant

// Resolve returns the grant for name. A missing grant resolves to the
// all-zero disabled grant rather than an error.
func (g GrantSet) Resolve(name permission.Name) Grant {
	if grant, ok := g[name]; ok {
		return grant
	}
	return Grant{Name: name, Enabled: false, Major: Level0, Minor: Level0}
}

// Set inserts or replaces a grant.
func (g GrantSet) Set(grant Grant) {
	g[grant.Name] = grant
}

// Clone returns a copy of the set; grant values are copied, the Value
// pointer is shared (grants are treated as immutable once stored).
func (g GrantSet) Clone() GrantSet {
	out := make(GrantSet, len(g))
	for name, grant := range g {
		out[name] = grant
	}
	return out
}
