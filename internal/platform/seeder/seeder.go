package seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdigris-dev/atrium/backend/internal/platform/logger"
)

// Seeder installs baseline data at startup. Implementations must be
// idempotent; the orchestrator runs them on every boot.
type Seeder interface {
	Name() string
	Seed(ctx context.Context, db *pgxpool.Pool) error
}

// Orchestrator runs the registered seeders in order before the server
// starts accepting traffic.
type Orchestrator struct {
	seeders []Seeder
	logger  logger.Logger
	db      *pgxpool.Pool
}

func NewOrchestrator(logger logger.Logger, db *pgxpool.Pool, seeders []Seeder) *Orchestrator {
	return &Orchestrator{seeders: seeders, logger: logger, db: db}
}

// RunAll executes each seeder, stopping at the first failure.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	for _, s := range o.seeders {
		o.logger.Info(ctx, "running seeder", "seeder", s.Name())
		if err := s.Seed(ctx, o.db); err != nil {
			return fmt.Errorf("seeder %s failed: %w", s.Name(), err)
		}
	}
	o.logger.Info(ctx, "seeding complete", "seeder_count", len(o.seeders))
	return nil
}
