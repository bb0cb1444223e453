package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdigris-dev/atrium/backend/internal/authz/domain"
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	"github.com/verdigris-dev/atrium/backend/internal/authz/ports"
	"github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
)

// RoleRepository implements the authz RoleRepository interface using
// PostgreSQL. Grants live in a child table keyed by (role_id, permission).
type RoleRepository struct {
	postgres.BaseRepository
}

// NewRoleRepository creates a new PostgreSQL role repository
func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *RoleRepository) WithTx(tx pgx.Tx) ports.RoleRepository {
	return &RoleRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a role and its grant rows
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	query, args, err := r.SB.
		Insert("roles").
		Columns("id", "name", "description", "rank", "is_default", "created_at", "updated_at").
		Values(
			pgtype.UUID{Bytes: role.ID, Valid: true},
			role.Name,
			role.Description,
			role.Rank,
			role.IsDefault,
			pgtype.Timestamptz{Time: role.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: role.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.Create: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("RoleRepository.Create: %w", err)
	}

	return r.insertGrants(ctx, role.ID, role.Grants)
}

// Update updates the role row; grants are replaced through ReplaceGrants
func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	query, args, err := r.SB.
		Update("roles").
		Set("name", role.Name).
		Set("description", role.Description).
		Set("rank", role.Rank).
		Set("is_default", role.IsDefault).
		Set("updated_at", pgtype.Timestamptz{Time: role.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: role.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("RoleRepository.Update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("RoleRepository.Update: role %s not found", role.ID)
	}
	return nil
}

// Delete removes a role; grant rows cascade
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("roles").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.Delete: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("RoleRepository.Delete: %w", err)
	}
	return nil
}

// GetByID retrieves a role with its grant table loaded
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return r.getRole(ctx, sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}})
}

// GetByName retrieves a role by its unique name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getRole(ctx, sq.Eq{"name": name})
}

// GetDefault retrieves the role flagged as default
func (r *RoleRepository) GetDefault(ctx context.Context) (*domain.Role, error) {
	return r.getRole(ctx, sq.Eq{"is_default": true})
}

// GetAll retrieves every role with grants loaded
func (r *RoleRepository) GetAll(ctx context.Context) ([]*domain.Role, error) {
	query, args, err := r.SB.
		Select("id", "name", "description", "rank", "is_default", "created_at", "updated_at").
		From("roles").
		OrderBy("rank DESC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("RoleRepository.GetAll: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("RoleRepository.GetAll: %w", err)
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("RoleRepository.GetAll: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RoleRepository.GetAll: %w", err)
	}

	for _, role := range roles {
		grants, err := r.loadGrants(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		role.Grants = grants
	}
	return roles, nil
}

// ReplaceGrants swaps a role's grant table atomically
func (r *RoleRepository) ReplaceGrants(ctx context.Context, roleID uuid.UUID, grants domain.GrantSet) error {
	query, args, err := r.SB.
		Delete("role_grants").
		Where(sq.Eq{"role_id": pgtype.UUID{Bytes: roleID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.ReplaceGrants: build query: %w", err)
	}
	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("RoleRepository.ReplaceGrants: %w", err)
	}
	return r.insertGrants(ctx, roleID, grants)
}

// SetDefault flags one role as default and clears every other flag
func (r *RoleRepository) SetDefault(ctx context.Context, roleID uuid.UUID) error {
	clear, clearArgs, err := r.SB.
		Update("roles").
		Set("is_default", false).
		Where(sq.NotEq{"id": pgtype.UUID{Bytes: roleID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.SetDefault: build query: %w", err)
	}
	if _, err = r.DB.Exec(ctx, clear, clearArgs...); err != nil {
		return fmt.Errorf("RoleRepository.SetDefault: %w", err)
	}

	set, setArgs, err := r.SB.
		Update("roles").
		Set("is_default", true).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: roleID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.SetDefault: build query: %w", err)
	}
	result, err := r.DB.Exec(ctx, set, setArgs...)
	if err != nil {
		return fmt.Errorf("RoleRepository.SetDefault: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("RoleRepository.SetDefault: role %s not found", roleID)
	}
	return nil
}

// ReassignMembers moves every member of fromRole to toRole
func (r *RoleRepository) ReassignMembers(ctx context.Context, fromRole, toRole uuid.UUID) (int64, error) {
	query, args, err := r.SB.
		Update("actors").
		Set("role_id", pgtype.UUID{Bytes: toRole, Valid: true}).
		Where(sq.Eq{"role_id": pgtype.UUID{Bytes: fromRole, Valid: true}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("RoleRepository.ReassignMembers: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("RoleRepository.ReassignMembers: %w", err)
	}
	return result.RowsAffected(), nil
}

// GetActor resolves an identity token to an actor with its role loaded
func (r *RoleRepository) GetActor(ctx context.Context, identityToken string) (*domain.Actor, error) {
	query, args, err := r.SB.
		Select("id", "identity_token", "role_id", "rank", "groups").
		From("actors").
		Where(sq.Eq{"identity_token": identityToken}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("RoleRepository.GetActor: build query: %w", err)
	}

	var (
		idVal     pgtype.UUID
		token     string
		roleIDVal pgtype.UUID
		rank      int
		groups    []string
	)
	row := r.DB.QueryRow(ctx, query, args...)
	if err := row.Scan(&idVal, &token, &roleIDVal, &rank, &groups); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("RoleRepository.GetActor: %w", err)
	}

	actor := &domain.Actor{
		ID:            uuid.UUID(idVal.Bytes),
		IdentityToken: token,
		Rank:          rank,
		Groups:        groups,
	}
	if roleIDVal.Valid {
		role, err := r.GetByID(ctx, uuid.UUID(roleIDVal.Bytes))
		if err != nil {
			return nil, err
		}
		actor.Role = role
	}
	return actor, nil
}

func (r *RoleRepository) getRole(ctx context.Context, where sq.Eq) (*domain.Role, error) {
	query, args, err := r.SB.
		Select("id", "name", "description", "rank", "is_default", "created_at", "updated_at").
		From("roles").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("RoleRepository.getRole: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("RoleRepository.getRole: %w", err)
	}

	grants, err := r.loadGrants(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Grants = grants
	return role, nil
}

func (r *RoleRepository) loadGrants(ctx context.Context, roleID uuid.UUID) (domain.GrantSet, error) {
	query, args, err := r.SB.
		Select("permission", "enabled", "major_level", "minor_level", "value").
		From("role_grants").
		Where(sq.Eq{"role_id": pgtype.UUID{Bytes: roleID, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("RoleRepository.loadGrants: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("RoleRepository.loadGrants: %w", err)
	}
	defer rows.Close()

	grants := make(domain.GrantSet)
	for rows.Next() {
		var (
			name       string
			enabled    bool
			major      int
			minor      int
			value      pgtype.Int8
		)
		if err := rows.Scan(&name, &enabled, &major, &minor, &value); err != nil {
			return nil, fmt.Errorf("RoleRepository.loadGrants: %w", err)
		}
		grant := domain.Grant{
			Name:    permission.Name(name),
			Enabled: enabled,
			Major:   domain.Level(major),
			Minor:   domain.Level(minor),
		}
		if value.Valid {
			v := value.Int64
			grant.Value = &v
		}
		grants[grant.Name] = grant
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RoleRepository.loadGrants: %w", err)
	}
	return grants, nil
}

func (r *RoleRepository) insertGrants(ctx context.Context, roleID uuid.UUID, grants domain.GrantSet) error {
	if len(grants) == 0 {
		return nil
	}

	builder := r.SB.
		Insert("role_grants").
		Columns("role_id", "permission", "enabled", "major_level", "minor_level", "value")
	for _, grant := range grants {
		var value pgtype.Int8
		if grant.Value != nil {
			value = pgtype.Int8{Int64: *grant.Value, Valid: true}
		}
		builder = builder.Values(
			pgtype.UUID{Bytes: roleID, Valid: true},
			string(grant.Name),
			grant.Enabled,
			int(grant.Major),
			int(grant.Minor),
			value,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("RoleRepository.insertGrants: build query: %w", err)
	}
	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("RoleRepository.insertGrants: %w", err)
	}
	return nil
}

// scanRole scans a role row without grants
func scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		idVal     pgtype.UUID
		name      string
		desc      string
		rank      int
		isDefault bool
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&idVal, &name, &desc, &rank, &isDefault, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return &domain.Role{
		ID:          uuid.UUID(idVal.Bytes),
		Name:        name,
		Description: desc,
		Rank:        rank,
		IsDefault:   isDefault,
		Grants:      make(domain.GrantSet),
		CreatedAt:   createdAt.Time,
		UpdatedAt:   updatedAt.Time,
	}, nil
}
