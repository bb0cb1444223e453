package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthzSeeder installs the baseline roles and their grant tables. It is
// idempotent: roles that already exist are left untouched, so operator
// changes survive restarts. The one-default-role invariant is restored if
// no default exists.
type AuthzSeeder struct{}

// NewAuthzSeeder creates a new authorization seeder
func NewAuthzSeeder() *AuthzSeeder {
	return &AuthzSeeder{}
}

// Name returns the name of this seeder
func (s *AuthzSeeder) Name() string {
	return "AuthzSeeder"
}

// Seed runs the authorization seeding logic
func (s *AuthzSeeder) Seed(ctx context.Context, db *pgxpool.Pool) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, role := range DefaultRoles() {
		if err := s.seedRole(ctx, tx, role); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}

	if err := s.ensureDefaultRole(ctx, tx); err != nil {
		return fmt.Errorf("failed to ensure default role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *AuthzSeeder) seedRole(ctx context.Context, tx pgx.Tx, role SeedRole) error {
	var existing uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, role.Name).Scan(&existing)
	if err == nil {
		// Already installed; keep operator changes.
		return nil
	}
	if err != pgx.ErrNoRows {
		return err
	}

	roleID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO roles (id, name, description, rank, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, roleID, role.Name, role.Description, role.Rank, role.IsDefault)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, grant := range role.Grants {
		batch.Queue(`
			INSERT INTO role_grants (role_id, permission, enabled, major_level, minor_level, value)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, roleID, string(grant.Name), grant.Enabled, grant.Major, grant.Minor, grant.Value)
	}
	br := tx.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range role.Grants {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert grant: %w", err)
		}
	}
	return br.Close()
}

// ensureDefaultRole restores the single-default invariant: if no role is
// flagged default, the lowest-ranked seeded role becomes it.
func (s *AuthzSeeder) ensureDefaultRole(ctx context.Context, tx pgx.Tx) error {
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM roles WHERE is_default`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE roles SET is_default = TRUE, updated_at = NOW()
		WHERE id = (SELECT id FROM roles ORDER BY rank ASC, name ASC LIMIT 1)
	`)
	return err
}
