package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// SectionRepository is the persistence port for sections and their
// authoritative delegated-role relations.
type SectionRepository interface {
	// Create persists the section together with its policy record in one
	// transaction-scoped call; no implicit hooks.
	Create(ctx context.Context, section *domain.Section) error
	Update(ctx context.Context, section *domain.Section) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error)
	GetByName(ctx context.Context, name string) (*domain.Section, error)
	GetAll(ctx context.Context) ([]*domain.Section, error)

	// GetManagers reads the authoritative owner/moderator/assistant
	// relations. The delegation cache is always rebuilt from this.
	GetManagers(ctx context.Context, sectionID uuid.UUID) (domain.Managers, error)

	// ReplaceManagers writes the full delegated-role set.
	ReplaceManagers(ctx context.Context, sectionID uuid.UUID, managers domain.Managers) error
}

// ManagerCache is the derived-view store for manager sets, keyed by section
// id. The key-value transport behind it is an external collaborator.
type ManagerCache interface {
	Get(ctx context.Context, sectionID uuid.UUID) (domain.Managers, bool, error)
	Set(ctx context.Context, sectionID uuid.UUID, managers domain.Managers) error
	Invalidate(ctx context.Context, sectionID uuid.UUID) error
}
