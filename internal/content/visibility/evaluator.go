package visibility

import (
	"context"

	"github.com/google/uuid"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// View is the slice of a resource the evaluator needs: author, workflow
// status, privacy tier and read-level floor.
type View struct {
	AuthorID  uuid.UUID
	Status    lifecycle.Status
	Privacy   lifecycle.Privacy
	ReadLevel int
}

// Decision is the outcome of a visibility check. CountsAsRead drives the
// read-counter increment on the single-item get path only; privileged views
// and list traversal never count.
type Decision struct {
	Visible      bool
	CountsAsRead bool
}

var hidden = Decision{}

// Evaluator decides get/list inclusion for one resource kind by composing
// workflow status, privacy tier and read-level thresholds.
type Evaluator struct {
	kind       lifecycle.Kind
	perms      *authzapp.PermissionResolver
	delegation lifecycle.DelegationSource
}

// NewEvaluator creates an evaluator for one kind.
func NewEvaluator(kind lifecycle.Kind, perms *authzapp.PermissionResolver, delegation lifecycle.DelegationSource) *Evaluator {
	return &Evaluator{kind: kind, perms: perms, delegation: delegation}
}

// CanGet runs the visibility algorithm in its fixed order: author
// exception, kind-wide override, section gate, then the status rule.
// Anything that falls through is not visible; callers surface that as
// NotFound, indistinguishable from genuine absence.
func (e *Evaluator) CanGet(ctx context.Context, actor authz.Actor, section *sections.Section, res View) (Decision, error) {
	// 1. Authors see their own work unless it has been cancelled.
	if actor.ID == res.AuthorID && res.Status != lifecycle.StatusCancel {
		return Decision{Visible: true, CountsAsRead: true}, nil
	}

	// 2. Kind-wide visibility override.
	if e.perms.MajorGE(actor, e.kind.GetPerm, authz.Level10) {
		return Decision{Visible: true, CountsAsRead: true}, nil
	}

	// 3. The section gate comes before any look at the resource itself.
	if section != nil {
		ok, err := e.CanViewSection(ctx, actor, section)
		if err != nil {
			return hidden, err
		}
		if !ok {
			return hidden, nil
		}
	}

	// 4. Status-specific rule.
	switch res.Status {
	case lifecycle.StatusActive:
		privacyOK := res.Privacy == lifecycle.PrivacyPublic ||
			e.perms.MinorGE(actor, e.kind.GetPerm, authz.Level10)
		readOK := actor.ReadLevel() >= res.ReadLevel ||
			e.perms.MajorGE(actor, permission.ReadLevel, authz.Level10)
		if privacyOK && readOK {
			return Decision{Visible: true, CountsAsRead: true}, nil
		}
		if section != nil {
			auditing, err := e.delegation.HasCapability(ctx, actor.ID, section, e.kind.AuditCap, false)
			if err != nil {
				return hidden, err
			}
			if auditing {
				return Decision{Visible: true}, nil
			}
		}
		if res.Privacy != lifecycle.PrivacyPrivate {
			return Decision{Visible: true}, nil
		}
		return hidden, nil

	case lifecycle.StatusCancel:
		return e.capabilityDecision(ctx, actor, section, e.kind.CancelCap)

	case lifecycle.StatusAudit, lifecycle.StatusFailed:
		if e.perms.MajorGE(actor, e.kind.AuditPerm, authz.Level10) {
			return Decision{Visible: true}, nil
		}
		return e.capabilityDecision(ctx, actor, section, e.kind.AuditCap)

	case lifecycle.StatusDraft:
		return e.capabilityDecision(ctx, actor, section, e.kind.DraftCap)

	case lifecycle.StatusRecycled:
		return e.capabilityDecision(ctx, actor, section, e.kind.RecycledCap)
	}

	return hidden, nil
}

// CanViewSection is the section's own visibility check, the same shape as
// the resource check one level up: status gate, override, delegated role,
// allow-lists, then the read-level floor.
func (e *Evaluator) CanViewSection(ctx context.Context, actor authz.Actor, section *sections.Section) (bool, error) {
	role, err := e.delegation.RoleOf(ctx, actor.ID, section.ID)
	if err != nil {
		return false, err
	}

	if section.Status == sections.SectionCancel {
		// Cancelled sections are visible only to override holders and to
		// whoever may flip the section status back.
		if e.perms.MajorGE(actor, e.kind.GetPerm, authz.Level10) {
			return true, nil
		}
		return sections.HasSetPermission(section.Policy.RequiredTier(sections.CapSetStatus), role, false), nil
	}

	if e.perms.MajorGE(actor, e.kind.GetPerm, authz.Level10) {
		return true, nil
	}
	if role.IsManager {
		return true, nil
	}

	if section.Status == sections.SectionHide {
		// Hidden sections admit managers and overrides only.
		return false, nil
	}

	var roleID uuid.UUID
	if actor.Role != nil {
		roleID = actor.Role.ID
	}
	if !section.AllowsRole(roleID) {
		return false, nil
	}
	if !section.AllowsAnyGroup(actor.Groups) {
		return false, nil
	}

	if actor.ReadLevel() >= section.ReadLevel {
		return true, nil
	}
	return e.perms.MajorGE(actor, permission.ReadLevel, authz.Level10), nil
}

// capabilityDecision grants a privileged, non-counting view to holders of a
// section capability.
func (e *Evaluator) capabilityDecision(ctx context.Context, actor authz.Actor, section *sections.Section, cap sections.Capability) (Decision, error) {
	if section == nil {
		return hidden, nil
	}
	allowed, err := e.delegation.HasCapability(ctx, actor.ID, section, cap, false)
	if err != nil {
		return hidden, err
	}
	if allowed {
		return Decision{Visible: true}, nil
	}
	return hidden, nil
}
