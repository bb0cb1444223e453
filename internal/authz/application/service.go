package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/authz/ports"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// Error definitions for role management operations
var (
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeRoleNotFound,
		"role not found",
		http.StatusNotFound,
	)
	ErrRoleNameExists = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeRoleNameExists,
		"role name already exists",
		http.StatusConflict,
	)
	ErrNoDefaultRole = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeNoDefaultRole,
		"no default role available to reassign members to",
		http.StatusConflict,
	)
	ErrInvalidGrant = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidPermission,
		"invalid grant",
		http.StatusBadRequest,
	)
)

// RoleService implements role-registry management: role CRUD, grant table
// replacement and default-role upkeep. All mutations are gated by the
// role:manage permission of the acting actor.
type RoleService struct {
	repo     ports.RoleRepository
	resolver *PermissionResolver
	logger   logger.Logger
}

// NewRoleService creates a new role management service.
func NewRoleService(repo ports.RoleRepository, resolver *PermissionResolver, logger logger.Logger) *RoleService {
	return &RoleService{repo: repo, resolver: resolver, logger: logger}
}

// GrantParams is the wire shape of one grant in a replacement request.
type GrantParams struct {
	Name    permission.Name
	Enabled bool
	Major   int
	Minor   int
	Value   *int64
}

// CreateRoleParams contains parameters for creating a role.
type CreateRoleParams struct {
	Name        string
	Description string
	Rank        int
	Grants      []GrantParams
}

// CreateRole creates a new role with its grant table.
func (s *RoleService) CreateRole(ctx context.Context, actor domain.Actor, params CreateRoleParams) (*domain.Role, error) {
	if err := s.resolver.Require(actor, permission.RoleManage); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(ctx, params.Name); err == nil && existing != nil {
		return nil, ErrRoleNameExists
	}

	role, err := domain.NewRole(params.Name, params.Description, params.Rank)
	if err != nil {
		return nil, ErrInvalidGrant.WithDetails(err.Error())
	}

	grants, err := buildGrantSet(params.Grants)
	if err != nil {
		return nil, err
	}
	role.ReplaceGrants(grants)

	if err := s.repo.Create(ctx, role); err != nil {
		s.logger.Error(ctx, "failed to create role", "name", params.Name, "error", err)
		return nil, fmt.Errorf("RoleService.CreateRole: %w", err)
	}

	s.logger.Info(ctx, "role created",
		"role_id", role.ID,
		"name", role.Name,
		"rank", role.Rank,
	)
	return role, nil
}

// UpdateRole updates a role's name, description and rank.
func (s *RoleService) UpdateRole(ctx context.Context, actor domain.Actor, roleID uuid.UUID, name, description *string, rank *int) (*domain.Role, error) {
	if err := s.resolver.Require(actor, permission.RoleManage); err != nil {
		return nil, err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if name != nil && *name != "" && *name != role.Name {
		if existing, err := s.repo.GetByName(ctx, *name); err == nil && existing != nil && existing.ID != roleID {
			return nil, ErrRoleNameExists
		}
		role.Name = *name
	}
	if description != nil {
		role.Description = *description
	}
	if rank != nil {
		if *rank < 0 {
			return nil, ErrInvalidGrant.WithDetails(domain.ErrNegativeRank.Error())
		}
		role.Rank = *rank
	}

	if err := s.repo.Update(ctx, role); err != nil {
		s.logger.Error(ctx, "failed to update role", "role_id", roleID, "error", err)
		return nil, fmt.Errorf("RoleService.UpdateRole: %w", err)
	}

	s.logger.Info(ctx, "role updated", "role_id", roleID, "name", role.Name)
	return role, nil
}

// ReplaceGrants swaps a role's entire grant table.
func (s *RoleService) ReplaceGrants(ctx context.Context, actor domain.Actor, roleID uuid.UUID, params []GrantParams) (*domain.Role, error) {
	if err := s.resolver.Require(actor, permission.RoleManage); err != nil {
		return nil, err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	grants, err := buildGrantSet(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceGrants(ctx, roleID, grants); err != nil {
		s.logger.Error(ctx, "failed to replace role grants", "role_id", roleID, "error", err)
		return nil, fmt.Errorf("RoleService.ReplaceGrants: %w", err)
	}
	role.ReplaceGrants(grants)

	s.logger.Info(ctx, "role grants replaced",
		"role_id", roleID,
		"grant_count", len(grants),
	)
	return role, nil
}

// SetDefaultRole marks a role as the default. The repository clears the
// flag elsewhere in the same transaction so that exactly one default exists.
func (s *RoleService) SetDefaultRole(ctx context.Context, actor domain.Actor, roleID uuid.UUID) error {
	if err := s.resolver.Require(actor, permission.RoleManage); err != nil {
		return err
	}

	if _, err := s.getRole(ctx, roleID); err != nil {
		return err
	}

	if err := s.repo.SetDefault(ctx, roleID); err != nil {
		s.logger.Error(ctx, "failed to set default role", "role_id", roleID, "error", err)
		return fmt.Errorf("RoleService.SetDefaultRole: %w", err)
	}

	s.logger.Info(ctx, "default role changed", "role_id", roleID)
	return nil
}

// DeleteRole deletes a role and reassigns its members to the default role.
func (s *RoleService) DeleteRole(ctx context.Context, actor domain.Actor, roleID uuid.UUID) error {
	if err := s.resolver.Require(actor, permission.RoleManage); err != nil {
		return err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := role.ValidateDeletion(); err != nil {
		return apperror.Wrap(err, apperror.CodeConflict, apperror.BusinessCodeNoDefaultRole,
			"the default role cannot be deleted", http.StatusConflict)
	}

	fallback, err := s.repo.GetDefault(ctx)
	if err != nil || fallback == nil {
		return ErrNoDefaultRole
	}

	moved, err := s.repo.ReassignMembers(ctx, roleID, fallback.ID)
	if err != nil {
		s.logger.Error(ctx, "failed to reassign role members", "role_id", roleID, "error", err)
		return fmt.Errorf("RoleService.DeleteRole (reassign): %w", err)
	}

	if err := s.repo.Delete(ctx, roleID); err != nil {
		s.logger.Error(ctx, "failed to delete role", "role_id", roleID, "error", err)
		return fmt.Errorf("RoleService.DeleteRole: %w", err)
	}

	s.logger.Info(ctx, "role deleted",
		"role_id", roleID,
		"name", role.Name,
		"members_reassigned", moved,
	)
	return nil
}

// GetRole retrieves a single role by ID.
func (s *RoleService) GetRole(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	return s.getRole(ctx, roleID)
}

// ListRoles retrieves all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to list roles", "error", err)
		return nil, fmt.Errorf("RoleService.ListRoles: %w", err)
	}
	return roles, nil
}

func (s *RoleService) getRole(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	role, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("RoleService.getRole: %w", err)
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func buildGrantSet(params []GrantParams) (domain.GrantSet, error) {
	grants := make(domain.GrantSet, len(params))
	for _, p := range params {
		major, err := domain.ParseLevel(p.Major)
		if err != nil {
			return nil, ErrInvalidGrant.WithDetails(err.Error())
		}
		minor, err := domain.ParseLevel(p.Minor)
		if err != nil {
			return nil, ErrInvalidGrant.WithDetails(err.Error())
		}
		grant, err := domain.NewGrant(p.Name, p.Enabled, major, minor, p.Value)
		if err != nil {
			return nil, ErrInvalidGrant.WithDetails(err.Error())
		}
		grants.Set(grant)
	}
	return grants, nil
}
