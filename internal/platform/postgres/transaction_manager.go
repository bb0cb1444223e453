package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionManager hands out transactions; repositories that need
// multi-statement atomicity depend on it rather than on the pool.
type TransactionManager interface {
	BeginTx(ctx context.Context) (Transaction, error)
}

// Transaction is one open database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Tx exposes the underlying pgx.Tx for BaseRepository.WithTx.
	Tx() pgx.Tx
}

type PoolTransactionManager struct {
	pool *pgxpool.Pool
}

func NewTransactionManager(pool *pgxpool.Pool) TransactionManager {
	return &PoolTransactionManager{pool: pool}
}

func (m *PoolTransactionManager) BeginTx(ctx context.Context) (Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTransaction{tx: tx}, nil
}

// WithTransaction runs fn inside one transaction, committing on success and
// rolling back on error or panic.
func WithTransaction(ctx context.Context, txm TransactionManager, fn func(tx pgx.Tx) error) error {
	txn, err := txm.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = txn.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(txn.Tx()); err != nil {
		_ = txn.Rollback(ctx)
		return err
	}
	return txn.Commit(ctx)
}

type pgxTransaction struct {
	tx pgx.Tx
}

func (t *pgxTransaction) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTransaction) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
func (t *pgxTransaction) Tx() pgx.Tx                         { return t.tx }
