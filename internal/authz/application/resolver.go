package application

import (
	"fmt"
	"net/http"

	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
)

// ErrPermissionDenied is the canonical denial surfaced by Require and by
// every downstream gate built on the resolver.
var ErrPermissionDenied = apperror.New(
	apperror.CodeForbidden,
	apperror.BusinessCodePermissionDenied,
	"permission denied",
	http.StatusForbidden,
)

// PermissionResolver turns an actor and a permission name into effective
// major/minor levels and an optional scalar value. It is a pure function of
// the actor's grant table; no side effects, no storage access.
type PermissionResolver struct{}

// NewPermissionResolver creates a resolver.
func NewPermissionResolver() *PermissionResolver {
	return &PermissionResolver{}
}

// Levels returns the effective (major, minor) levels for a permission.
// A missing grant yields (LEVEL_0, LEVEL_0).
func (r *PermissionResolver) Levels(actor domain.Actor, name permission.Name) (domain.Level, domain.Level) {
	grant := actor.Grant(name)
	return grant.Major, grant.Minor
}

// Value returns the grant's open-ended scalar, or nil when absent.
func (r *PermissionResolver) Value(actor domain.Actor, name permission.Name) *int64 {
	return actor.Grant(name).Value
}

// Enabled reports the grant's coarse on/off flag.
func (r *PermissionResolver) Enabled(actor domain.Actor, name permission.Name) bool {
	return actor.Grant(name).Enabled
}

// Require fails with PermissionDenied when the grant is disabled. It is the
// coarse gate applied before finer level comparisons.
func (r *PermissionResolver) Require(actor domain.Actor, name permission.Name) error {
	if !permission.IsValid(name) {
		return apperror.New(
			apperror.CodeBadRequest,
			apperror.BusinessCodeInvalidPermission,
			fmt.Sprintf("unknown permission: %s", name),
			http.StatusBadRequest,
		)
	}
	if !actor.Grant(name).Enabled {
		return ErrPermissionDenied
	}
	return nil
}

// MajorGE reports whether the actor's major level for name meets threshold.
func (r *PermissionResolver) MajorGE(actor domain.Actor, name permission.Name, threshold domain.Level) bool {
	major, _ := r.Levels(actor, name)
	return major.GE(threshold)
}

// MinorGE reports whether the actor's minor level for name meets threshold.
func (r *PermissionResolver) MinorGE(actor domain.Actor, name permission.Name, threshold domain.Level) bool {
	_, minor := r.Levels(actor, name)
	return minor.GE(threshold)
}
