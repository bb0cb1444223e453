package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SectionStatus is the lifecycle state of a section container.
type SectionStatus int

const (
	SectionCancel SectionStatus = 0
	SectionNormal SectionStatus = 1
	SectionHide   SectionStatus = 2
)

// IsValid checks if the status is a known value.
func (s SectionStatus) IsValid() bool {
	switch s {
	case SectionCancel, SectionNormal, SectionHide:
		return true
	default:
		return false
	}
}

// Error definitions for section operations
var (
	ErrSectionNameEmpty = errors.New("section name cannot be empty")
	ErrNegativeReadLevel = errors.New("section read level cannot be negative")
)

// Section is a scoped container (a board) that owns a delegated-role set
// and a capability policy governing its contained resources.
type Section struct {
	ID          uuid.UUID
	Name        string
	Description string
	OwnerID     uuid.UUID
	Status      SectionStatus
	ReadLevel   int
	// Optional allow-lists; empty means no restriction.
	AllowRoleIDs []uuid.UUID
	AllowGroups  []string
	Policy       Policy
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSection creates a section with its policy record. Policy and state
// records are created atomically with the section by the repository.
func NewSection(name, description string, ownerID uuid.UUID, readLevel int) (*Section, error) {
	if name == "" {
		return nil, ErrSectionNameEmpty
	}
	if readLevel < 0 {
		return nil, ErrNegativeReadLevel
	}
	now := time.Now()
	return &Section{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Status:      SectionNormal,
		ReadLevel:   readLevel,
		Policy:      DefaultPolicy(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AllowsRole reports whether the role allow-list admits roleID. An empty
// list admits everyone.
func (s *Section) AllowsRole(roleID uuid.UUID) bool {
	if len(s.AllowRoleIDs) == 0 {
		return true
	}
	for _, id := range s.AllowRoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// AllowsAnyGroup reports whether any of the given groups is on the group
// allow-list. An empty list admits everyone.
func (s *Section) AllowsAnyGroup(groups []string) bool {
	if len(s.AllowGroups) == 0 {
		return true
	}
	for _, allowed := range s.AllowGroups {
		for _, g := range groups {
			if g == allowed {
				return true
			}
		}
	}
	return false
}

// Managers is the authoritative delegated-role set of a section. The cached
// copy held by the delegation resolver is always reconstructible from this.
type Managers struct {
	OwnerID      uuid.UUID
	ModeratorIDs []uuid.UUID
	AssistantIDs []uuid.UUID
}

// IsModerator reports whether id is in the moderator set.
func (m Managers) IsModerator(id uuid.UUID) bool {
	for _, mid := range m.ModeratorIDs {
		if mid == id {
			return true
		}
	}
	return false
}

// IsAssistant reports whether id is in the assistant set.
func (m Managers) IsAssistant(id uuid.UUID) bool {
	for _, aid := range m.AssistantIDs {
		if aid == id {
			return true
		}
	}
	return false
}
