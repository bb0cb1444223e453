package lifecycle

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	authzapp "github.com/verdigris-dev/atrium/backend/internal/authz/application"
	authz "github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// ErrInvalidStatus rejects statuses outside the kind's enum.
var ErrInvalidStatus = apperror.New(
	apperror.CodeValidationFailed,
	apperror.BusinessCodeInvalidStatus,
	"invalid status for this resource kind",
	http.StatusBadRequest,
)

// DelegationSource answers section capability questions for the machine.
// Implemented by the sections application DelegationResolver.
type DelegationSource interface {
	HasCapability(ctx context.Context, actorID uuid.UUID, section *sections.Section, cap sections.Capability, override bool) (bool, error)
	RoleOf(ctx context.Context, actorID, sectionID uuid.UUID) (sections.SectionRole, error)
}

// Machine is the status transition engine, instantiated once per resource
// kind. It encodes which transitions are legal for which actor under the
// current permission grants, delegated tiers and policy toggles. It never
// touches storage; services apply the transition it returns.
type Machine struct {
	kind       Kind
	perms      *authzapp.PermissionResolver
	delegation DelegationSource
	policy     *PolicyConfig
}

// NewMachine creates a machine for one kind.
func NewMachine(kind Kind, perms *authzapp.PermissionResolver, delegation DelegationSource, policy *PolicyConfig) *Machine {
	return &Machine{kind: kind, perms: perms, delegation: delegation, policy: policy}
}

// Kind returns the kind descriptor the machine was built for.
func (m *Machine) Kind() Kind {
	return m.kind
}

// Transition is an accepted status change plus the counter adjustment it
// implies on the owning aggregate.
type Transition struct {
	From    Status
	To      Status
	Changed bool
	// Delta is +1 when the resource enters ACTIVE, -1 when it leaves, 0
	// otherwise. The collaborator's increment is atomic; the core only
	// decides direction.
	Delta int64
}

func (m *Machine) auditEnabled() bool {
	return m.kind.AuditFlag(*m.policy)
}

func (m *Machine) cancelEnabled() bool {
	return m.kind.CancelFlag(*m.policy)
}

// auditPower reports whether the actor can move resources through review:
// the kind's audit grant at LEVEL_10, the edit grant's minor LEVEL_10 axis,
// or the delegated audit capability on the section.
func (m *Machine) auditPower(ctx context.Context, actor authz.Actor, section *sections.Section) (bool, error) {
	if m.perms.MajorGE(actor, m.kind.AuditPerm, authz.Level10) {
		return true, nil
	}
	if m.perms.MinorGE(actor, m.kind.EditPerm, authz.Level10) {
		return true, nil
	}
	if section == nil {
		return false, nil
	}
	return m.delegation.HasCapability(ctx, actor.ID, section, m.kind.AuditCap, false)
}

// cancelPower mirrors the delete gate shape for soft cancellation: authors
// at LEVEL_1+, anyone at LEVEL_10, or the delegated cancel capability.
func (m *Machine) cancelPower(ctx context.Context, actor authz.Actor, section *sections.Section, isAuthor bool) (bool, error) {
	if isAuthor && m.perms.MajorGE(actor, m.kind.CancelPerm, authz.Level1) {
		return true, nil
	}
	if m.perms.MajorGE(actor, m.kind.CancelPerm, authz.Level10) {
		return true, nil
	}
	if section == nil {
		return false, nil
	}
	return m.delegation.HasCapability(ctx, actor.ID, section, m.kind.CancelCap, false)
}

// CreationStatus computes the initial status of a freshly created resource.
// A nil requested status means the creator expressed no preference. Audit
// off forces ACTIVE for everything except an explicit CANCEL, which has its
// own gate.
func (m *Machine) CreationStatus(ctx context.Context, actor authz.Actor, section *sections.Section, requested *Status) (Status, error) {
	if requested != nil {
		switch *requested {
		case StatusCancel:
			if !m.cancelEnabled() {
				return 0, authzapp.ErrPermissionDenied
			}
			allowed, err := m.cancelPower(ctx, actor, section, true)
			if err != nil {
				return 0, err
			}
			if !allowed {
				return 0, authzapp.ErrPermissionDenied
			}
			return StatusCancel, nil

		case StatusDraft:
			if !m.kind.HasDraft {
				return 0, ErrInvalidStatus
			}
			return StatusDraft, nil

		case StatusRecycled:
			return 0, ErrInvalidStatus
		}
	}

	if !m.auditEnabled() {
		return StatusActive, nil
	}

	if requested != nil {
		switch *requested {
		case StatusAudit:
			return StatusAudit, nil

		case StatusActive, StatusFailed:
			if section == nil {
				return *requested, nil
			}
			allowed, err := m.auditPower(ctx, actor, section)
			if err != nil {
				return 0, err
			}
			if !allowed {
				return 0, authzapp.ErrPermissionDenied
			}
			return *requested, nil
		}
	}

	// No explicit request: sections with auto-audit hold new content for
	// review unless the creator has audit power.
	if section != nil && section.Policy.AutoAudit {
		allowed, err := m.auditPower(ctx, actor, section)
		if err != nil {
			return 0, err
		}
		if !allowed {
			return StatusAudit, nil
		}
	}
	return StatusActive, nil
}

// UpdateStatus evaluates a status change and/or content edit on an existing
// resource. A nil requested status means a pure content edit. The returned
// Transition carries the resulting status and its counter delta; a no-op
// request (same status, no content change) returns Changed=false with no
// side effects.
func (m *Machine) UpdateStatus(ctx context.Context, actor authz.Actor, section *sections.Section, authorID uuid.UUID, current Status, requested *Status, contentChanged bool) (Transition, error) {
	isAuthor := actor.ID == authorID

	if requested == nil {
		// Content edits re-enter review unless the editor holds audit power.
		if contentChanged && m.auditEnabled() &&
			(current == StatusActive || current == StatusAudit || current == StatusFailed) {
			allowed, err := m.auditPower(ctx, actor, section)
			if err != nil {
				return Transition{}, err
			}
			if !allowed {
				return m.transition(current, StatusAudit), nil
			}
		}
		return Transition{From: current, To: current, Changed: false}, nil
	}

	target := *requested
	if target == current && !contentChanged {
		return Transition{From: current, To: current, Changed: false}, nil
	}

	switch target {
	case StatusDraft:
		if !m.kind.HasDraft {
			return Transition{}, ErrInvalidStatus
		}
		if !isAuthor {
			allowed, err := m.sectionCapability(ctx, actor, section, m.kind.DraftCap)
			if err != nil {
				return Transition{}, err
			}
			if !allowed {
				return Transition{}, authzapp.ErrPermissionDenied
			}
		}
		return m.transition(current, StatusDraft), nil

	case StatusRecycled:
		if !isAuthor {
			allowed, err := m.sectionCapability(ctx, actor, section, m.kind.RecycledCap)
			if err != nil {
				return Transition{}, err
			}
			if !allowed {
				return Transition{}, authzapp.ErrPermissionDenied
			}
		}
		return m.transition(current, StatusRecycled), nil

	case StatusCancel:
		if !m.cancelEnabled() {
			return Transition{}, authzapp.ErrPermissionDenied
		}
		allowed, err := m.cancelPower(ctx, actor, section, isAuthor)
		if err != nil {
			return Transition{}, err
		}
		if !allowed {
			return Transition{}, authzapp.ErrPermissionDenied
		}
		return m.transition(current, StatusCancel), nil

	case StatusAudit:
		if !m.auditEnabled() {
			return m.transition(current, StatusActive), nil
		}
		return m.transition(current, StatusAudit), nil

	case StatusActive, StatusFailed:
		if !m.auditEnabled() || section == nil {
			return m.transition(current, target), nil
		}
		allowed, err := m.auditPower(ctx, actor, section)
		if err != nil {
			return Transition{}, err
		}
		if allowed {
			return m.transition(current, target), nil
		}
		if isAuthor {
			// Self-service re-review: the author's request is held for
			// audit instead of being rejected outright.
			return m.transition(current, StatusAudit), nil
		}
		return Transition{}, authzapp.ErrPermissionDenied
	}

	return Transition{}, ErrInvalidStatus
}

// CanDelete gates deletion. force=true is a hard delete under the kind's
// delete permission; force=false is a soft cancel under the cancel
// permission, additionally requiring the kind's cancel flag.
func (m *Machine) CanDelete(ctx context.Context, actor authz.Actor, section *sections.Section, authorID uuid.UUID, force bool) (bool, error) {
	perm := m.kind.DeletePerm
	cap := m.kind.DeleteCap
	if !force {
		if !m.cancelEnabled() {
			return false, nil
		}
		perm = m.kind.CancelPerm
		cap = m.kind.CancelCap
	}

	if actor.ID == authorID && m.perms.MajorGE(actor, perm, authz.Level1) {
		return true, nil
	}
	if m.perms.MajorGE(actor, perm, authz.Level10) {
		return true, nil
	}
	if section == nil {
		return false, nil
	}
	return m.delegation.HasCapability(ctx, actor.ID, section, cap, false)
}

func (m *Machine) sectionCapability(ctx context.Context, actor authz.Actor, section *sections.Section, cap sections.Capability) (bool, error) {
	if section == nil {
		return false, nil
	}
	return m.delegation.HasCapability(ctx, actor.ID, section, cap, false)
}

func (m *Machine) transition(from, to Status) Transition {
	return Transition{
		From:    from,
		To:      to,
		Changed: from != to,
		Delta:   ActiveDelta(from, to),
	}
}

// BatchOutcome is the per-item result of a batch delete. One item's failure
// never aborts the others.
type BatchOutcome string

const (
	OutcomeSuccess          BatchOutcome = "SUCCESS"
	OutcomeNotFound         BatchOutcome = "NOT_FOUND"
	OutcomePermissionDenied BatchOutcome = "PERMISSION_DENIED"
)

// BatchResult pairs a resource id with its delete outcome.
type BatchResult struct {
	ID      uuid.UUID
	Outcome BatchOutcome
}
