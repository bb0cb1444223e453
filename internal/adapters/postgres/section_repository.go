package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdigris-dev/atrium/backend/internal/platform/postgres"
	"github.com/verdigris-dev/atrium/backend/internal/sections/domain"
	"github.com/verdigris-dev/atrium/backend/internal/sections/ports"
)

// SectionRepository implements the sections SectionRepository interface
// using PostgreSQL. The policy record lives in a child table; the
// delegated-role relations live in section_managers keyed by tier.
type SectionRepository struct {
	postgres.BaseRepository
	txm postgres.TransactionManager
}

// NewSectionRepository creates a new PostgreSQL section repository
func NewSectionRepository(db *pgxpool.Pool, txm postgres.TransactionManager) *SectionRepository {
	return &SectionRepository{
		BaseRepository: postgres.NewBaseRepository(db),
		txm:            txm,
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *SectionRepository) WithTx(tx pgx.Tx) ports.SectionRepository {
	return &SectionRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
		txm:            r.txm,
	}
}

// Create persists the section, its policy record and the owner relation in
// one transaction
func (r *SectionRepository) Create(ctx context.Context, section *domain.Section) error {
	return postgres.WithTransaction(ctx, r.txm, func(tx pgx.Tx) error {
		repo := &SectionRepository{BaseRepository: r.BaseRepository.WithTx(tx), txm: r.txm}
		if err := repo.insertSection(ctx, section); err != nil {
			return err
		}
		return repo.upsertPolicy(ctx, section.ID, section.Policy)
	})
}

// Update updates the section row and its policy record
func (r *SectionRepository) Update(ctx context.Context, section *domain.Section) error {
	return postgres.WithTransaction(ctx, r.txm, func(tx pgx.Tx) error {
		repo := &SectionRepository{BaseRepository: r.BaseRepository.WithTx(tx), txm: r.txm}

		query, args, err := repo.SB.
			Update("sections").
			Set("name", section.Name).
			Set("description", section.Description).
			Set("owner_id", pgtype.UUID{Bytes: section.OwnerID, Valid: true}).
			Set("status", int(section.Status)).
			Set("read_level", section.ReadLevel).
			Set("allow_role_ids", uuidSlice(section.AllowRoleIDs)).
			Set("allow_groups", section.AllowGroups).
			Set("updated_at", pgtype.Timestamptz{Time: section.UpdatedAt, Valid: true}).
			Where(sq.Eq{"id": pgtype.UUID{Bytes: section.ID, Valid: true}}).
			ToSql()
		if err != nil {
			return fmt.Errorf("SectionRepository.Update: build query: %w", err)
		}

		result, err := repo.DB.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("SectionRepository.Update: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("SectionRepository.Update: section %s not found", section.ID)
		}
		return repo.upsertPolicy(ctx, section.ID, section.Policy)
	})
}

// Delete removes a section; policy and manager rows cascade
func (r *SectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("sections").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("SectionRepository.Delete: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("SectionRepository.Delete: %w", err)
	}
	return nil
}

// GetByID retrieves a section with its policy loaded
func (r *SectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	return r.getSection(ctx, sq.Eq{"s.id": pgtype.UUID{Bytes: id, Valid: true}})
}

// GetByName retrieves a section by its unique name
func (r *SectionRepository) GetByName(ctx context.Context, name string) (*domain.Section, error) {
	return r.getSection(ctx, sq.Eq{"s.name": name})
}

// GetAll retrieves every section with policies loaded
func (r *SectionRepository) GetAll(ctx context.Context) ([]*domain.Section, error) {
	query, args, err := r.selectSections().OrderBy("s.name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("SectionRepository.GetAll: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SectionRepository.GetAll: %w", err)
	}
	defer rows.Close()

	var sections []*domain.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("SectionRepository.GetAll: %w", err)
		}
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SectionRepository.GetAll: %w", err)
	}
	return sections, nil
}

// GetManagers reads the authoritative owner/moderator/assistant relations
func (r *SectionRepository) GetManagers(ctx context.Context, sectionID uuid.UUID) (domain.Managers, error) {
	ownerQuery, ownerArgs, err := r.SB.
		Select("owner_id").
		From("sections").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: sectionID, Valid: true}}).
		ToSql()
	if err != nil {
		return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: build query: %w", err)
	}

	var ownerVal pgtype.UUID
	if err := r.DB.QueryRow(ctx, ownerQuery, ownerArgs...).Scan(&ownerVal); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: section %s not found", sectionID)
		}
		return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: %w", err)
	}

	query, args, err := r.SB.
		Select("actor_id", "tier").
		From("section_managers").
		Where(sq.Eq{"section_id": pgtype.UUID{Bytes: sectionID, Valid: true}}).
		ToSql()
	if err != nil {
		return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: %w", err)
	}
	defer rows.Close()

	managers := domain.Managers{OwnerID: uuid.UUID(ownerVal.Bytes)}
	for rows.Next() {
		var (
			actorVal pgtype.UUID
			tier     string
		)
		if err := rows.Scan(&actorVal, &tier); err != nil {
			return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: %w", err)
		}
		actorID := uuid.UUID(actorVal.Bytes)
		switch tier {
		case "moderator":
			managers.ModeratorIDs = append(managers.ModeratorIDs, actorID)
		case "assistant":
			managers.AssistantIDs = append(managers.AssistantIDs, actorID)
		default:
			return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: unknown tier %s", tier)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Managers{}, fmt.Errorf("SectionRepository.GetManagers: %w", err)
	}
	return managers, nil
}

// ReplaceManagers writes the full delegated-role set in one transaction
func (r *SectionRepository) ReplaceManagers(ctx context.Context, sectionID uuid.UUID, managers domain.Managers) error {
	return postgres.WithTransaction(ctx, r.txm, func(tx pgx.Tx) error {
		repo := &SectionRepository{BaseRepository: r.BaseRepository.WithTx(tx), txm: r.txm}

		owner, ownerArgs, err := repo.SB.
			Update("sections").
			Set("owner_id", pgtype.UUID{Bytes: managers.OwnerID, Valid: true}).
			Where(sq.Eq{"id": pgtype.UUID{Bytes: sectionID, Valid: true}}).
			ToSql()
		if err != nil {
			return fmt.Errorf("SectionRepository.ReplaceManagers: build query: %w", err)
		}
		result, err := repo.DB.Exec(ctx, owner, ownerArgs...)
		if err != nil {
			return fmt.Errorf("SectionRepository.ReplaceManagers: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("SectionRepository.ReplaceManagers: section %s not found", sectionID)
		}

		clear, clearArgs, err := repo.SB.
			Delete("section_managers").
			Where(sq.Eq{"section_id": pgtype.UUID{Bytes: sectionID, Valid: true}}).
			ToSql()
		if err != nil {
			return fmt.Errorf("SectionRepository.ReplaceManagers: build query: %w", err)
		}
		if _, err = repo.DB.Exec(ctx, clear, clearArgs...); err != nil {
			return fmt.Errorf("SectionRepository.ReplaceManagers: %w", err)
		}

		if len(managers.ModeratorIDs) == 0 && len(managers.AssistantIDs) == 0 {
			return nil
		}

		builder := repo.SB.
			Insert("section_managers").
			Columns("section_id", "actor_id", "tier")
		for _, id := range managers.ModeratorIDs {
			builder = builder.Values(pgtype.UUID{Bytes: sectionID, Valid: true}, pgtype.UUID{Bytes: id, Valid: true}, "moderator")
		}
		for _, id := range managers.AssistantIDs {
			builder = builder.Values(pgtype.UUID{Bytes: sectionID, Valid: true}, pgtype.UUID{Bytes: id, Valid: true}, "assistant")
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("SectionRepository.ReplaceManagers: build query: %w", err)
		}
		if _, err = repo.DB.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("SectionRepository.ReplaceManagers: %w", err)
		}
		return nil
	})
}

func (r *SectionRepository) insertSection(ctx context.Context, section *domain.Section) error {
	query, args, err := r.SB.
		Insert("sections").
		Columns(
			"id", "name", "description", "owner_id", "status", "read_level",
			"allow_role_ids", "allow_groups", "created_at", "updated_at",
		).
		Values(
			pgtype.UUID{Bytes: section.ID, Valid: true},
			section.Name,
			section.Description,
			pgtype.UUID{Bytes: section.OwnerID, Valid: true},
			int(section.Status),
			section.ReadLevel,
			uuidSlice(section.AllowRoleIDs),
			section.AllowGroups,
			pgtype.Timestamptz{Time: section.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: section.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("SectionRepository.insertSection: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("SectionRepository.insertSection: %w", err)
	}
	return nil
}

func (r *SectionRepository) upsertPolicy(ctx context.Context, sectionID uuid.UUID, policy domain.Policy) error {
	capabilities, err := json.Marshal(policy.Capabilities)
	if err != nil {
		return fmt.Errorf("SectionRepository.upsertPolicy: marshal capabilities: %w", err)
	}

	query, args, err := r.SB.
		Insert("section_policies").
		Columns(
			"section_id", "capabilities", "auto_audit", "article_mute",
			"reply_mute", "max_articles", "max_articles_one_day",
		).
		Values(
			pgtype.UUID{Bytes: sectionID, Valid: true},
			capabilities,
			policy.AutoAudit,
			policy.ArticleMute,
			policy.ReplyMute,
			policy.MaxArticles,
			policy.MaxArticlesOneDay,
		).
		Suffix(`ON CONFLICT (section_id) DO UPDATE SET
			capabilities = EXCLUDED.capabilities,
			auto_audit = EXCLUDED.auto_audit,
			article_mute = EXCLUDED.article_mute,
			reply_mute = EXCLUDED.reply_mute,
			max_articles = EXCLUDED.max_articles,
			max_articles_one_day = EXCLUDED.max_articles_one_day`).
		ToSql()
	if err != nil {
		return fmt.Errorf("SectionRepository.upsertPolicy: build query: %w", err)
	}

	if _, err = r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("SectionRepository.upsertPolicy: %w", err)
	}
	return nil
}

func (r *SectionRepository) selectSections() sq.SelectBuilder {
	return r.SB.
		Select(
			"s.id", "s.name", "s.description", "s.owner_id", "s.status",
			"s.read_level", "s.allow_role_ids", "s.allow_groups",
			"s.created_at", "s.updated_at",
			"p.capabilities", "p.auto_audit", "p.article_mute",
			"p.reply_mute", "p.max_articles", "p.max_articles_one_day",
		).
		From("sections s").
		Join("section_policies p ON p.section_id = s.id")
}

func (r *SectionRepository) getSection(ctx context.Context, where sq.Eq) (*domain.Section, error) {
	query, args, err := r.selectSections().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("SectionRepository.getSection: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	section, err := scanSection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("SectionRepository.getSection: %w", err)
	}
	return section, nil
}

// scanSection scans a section joined with its policy row
func scanSection(row pgx.Row) (*domain.Section, error) {
	var (
		idVal        pgtype.UUID
		name         string
		desc         string
		ownerVal     pgtype.UUID
		status       int
		readLevel    int
		allowRoles   []pgtype.UUID
		allowGroups  []string
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		capabilities []byte
		policy       domain.Policy
	)
	if err := row.Scan(
		&idVal, &name, &desc, &ownerVal, &status, &readLevel,
		&allowRoles, &allowGroups, &createdAt, &updatedAt,
		&capabilities, &policy.AutoAudit, &policy.ArticleMute,
		&policy.ReplyMute, &policy.MaxArticles, &policy.MaxArticlesOneDay,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(capabilities, &policy.Capabilities); err != nil {
		return nil, fmt.Errorf("scanSection: unmarshal capabilities: %w", err)
	}

	roleIDs := make([]uuid.UUID, 0, len(allowRoles))
	for _, v := range allowRoles {
		roleIDs = append(roleIDs, uuid.UUID(v.Bytes))
	}

	return &domain.Section{
		ID:           uuid.UUID(idVal.Bytes),
		Name:         name,
		Description:  desc,
		OwnerID:      uuid.UUID(ownerVal.Bytes),
		Status:       domain.SectionStatus(status),
		ReadLevel:    readLevel,
		AllowRoleIDs: roleIDs,
		AllowGroups:  allowGroups,
		Policy:       policy,
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}

func uuidSlice(ids []uuid.UUID) []pgtype.UUID {
	out := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, pgtype.UUID{Bytes: id, Valid: true})
	}
	return out
}
