package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "stockpos/internal/errors"
)

type TransactionManager interface {
	DBTX
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Store is the DB-bound executor that can also open units of work.
type Store struct {
	*Adapter
	db TransactionManager
}

func NewStore(db TransactionManager) *Store {
	return &Store{
		Adapter: NewAdapter(db),
		db:      db,
	}
}

// InTx runs fn against a transaction-bound executor. The transaction commits
// when fn returns nil and rolls back when fn returns an error or panics.
func (s *Store) InTx(ctx context.Context, opts *sql.TxOptions, fn func(Executor) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return apperrors.NewStorageError("BEGIN", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewAdapter(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("COMMIT", err)
	}

	return nil
}
