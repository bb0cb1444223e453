package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both pgxpool.Pool and pgx.Tx, so repository
// methods run unchanged inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository bundles the querier with a dollar-placeholder statement
// builder; every postgres adapter embeds it.
type BaseRepository struct {
	DB Querier
	SB sq.StatementBuilderType
}

func NewBaseRepository(db *pgxpool.Pool) BaseRepository {
	return BaseRepository{
		DB: db,
		SB: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// WithTx rebinds the repository onto a transaction.
func (b BaseRepository) WithTx(tx pgx.Tx) BaseRepository {
	return BaseRepository{DB: tx, SB: b.SB}
}
