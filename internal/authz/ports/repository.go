package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
)

// RoleRepository is the persistence port for the role registry. Implemented
// by the postgres adapter.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	GetDefault(ctx context.Context) (*domain.Role, error)
	GetAll(ctx context.Context) ([]*domain.Role, error)

	// ReplaceGrants swaps a role's grant table atomically.
	ReplaceGrants(ctx context.Context, roleID uuid.UUID, grants domain.GrantSet) error

	// SetDefault marks roleID as the default role and clears the flag on
	// every other role in the same transaction, preserving the exactly-one
	// invariant.
	SetDefault(ctx context.Context, roleID uuid.UUID) error

	// ReassignMembers moves every member of fromRole to toRole. Used when a
	// role is deleted.
	ReassignMembers(ctx context.Context, fromRole, toRole uuid.UUID) (int64, error)

	// GetActor resolves an identity token to an actor with its role and
	// grant table loaded.
	GetActor(ctx context.Context, identityToken string) (*domain.Actor, error)
}
