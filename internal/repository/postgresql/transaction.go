package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kelola-hr/hrm-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTransaction executes fn inside a database transaction. The context
// passed to fn carries the transaction, so repository calls made with it go
// through the same transaction (see GetQuerier).
func WithTransaction(ctx context.Context, db *database.DB, fn func(txCtx context.Context) error) error {
	// Join an ambient transaction instead of opening a nested one, so
	// services can compose transactional helpers into one commit.
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback during panic recovery failed", "error", rbErr)
			}
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns either transaction or pool.
// Used in repositories to support both transactional and non-transactional operations.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}

// TxRunnerFor binds WithTransaction to a pool as a database.TxRunner.
func TxRunnerFor(db *database.DB) database.TxRunner {
	return func(ctx context.Context, fn func(txCtx context.Context) error) error {
		return WithTransaction(ctx, db, fn)
	}
}
