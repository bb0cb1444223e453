package lifecycle

// Status is the kind-independent workflow state of a content resource.
// Each resource kind maps these onto its own numeric wire codes; the
// machine reasons only in these symbolic states.
type Status int

const (
	StatusCancel Status = iota
	StatusActive
	StatusDraft
	StatusAudit
	StatusFailed
	StatusRecycled
)

// String returns the lower-case state name.
func (s Status) String() string {
	switch s {
	case StatusCancel:
		return "cancel"
	case StatusActive:
		return "active"
	case StatusDraft:
		return "draft"
	case StatusAudit:
		return "audit"
	case StatusFailed:
		return "failed"
	case StatusRecycled:
		return "recycled"
	default:
		return "unknown"
	}
}

// Privacy is the per-resource visibility class, independent of workflow
// status. The numeric codes are shared across kinds.
type Privacy int

const (
	PrivacyPrivate   Privacy = 0
	PrivacyPublic    Privacy = 1
	PrivacyProtected Privacy = 2
)

// IsValid checks if the privacy code is known.
func (p Privacy) IsValid() bool {
	switch p {
	case PrivacyPrivate, PrivacyPublic, PrivacyProtected:
		return true
	default:
		return false
	}
}

// ActiveDelta computes the counter adjustment a transition causes on the
// owning aggregate: +1 entering ACTIVE, -1 leaving it, 0 otherwise. It is
// computed once per transition from the (old, new) pair and never reapplied,
// which keeps the adjustment idempotent.
func ActiveDelta(old, new Status) int64 {
	switch {
	case old != StatusActive && new == StatusActive:
		return 1
	case old == StatusActive && new != StatusActive:
		return -1
	default:
		return 0
	}
}
