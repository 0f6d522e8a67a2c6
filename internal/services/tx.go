package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"

	"github.com/bonchicares/agent-wallet/internal/middlewares"
)

const (
	maxConflictRetries = 3
	conflictBackoff    = 50 * time.Millisecond
)

// runInTx executes fn atomically. When the context already carries a
// request-scoped transaction, fn joins it and the transaction owner keeps
// commit, rollback and retry responsibility. Otherwise a new transaction
// is opened and transient serialization conflicts are retried a bounded
// number of times before surfacing.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context) error) error {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	backoff := retry.WithMaxRetries(maxConflictRetries, retry.NewConstant(conflictBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tx, err := db.Beginx()
		if err != nil {
			return err
		}

		txCtx := middlewares.SetTxToContext(ctx, tx)
		if err := fn(txCtx); err != nil {
			tx.Rollback()
			if isRetryableConflict(err) {
				return retry.RetryableError(err)
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isRetryableConflict(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
}

// isRetryableConflict reports whether err is a transient transaction
// conflict (serialization failure or deadlock).
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
