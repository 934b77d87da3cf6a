package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/code-escrow/pkg/retry"
	"github.com/code-payments/code-escrow/pkg/retry/backoff"
)

const (
	maxSerializationRetries = 5
	maxSerializationBackoff = 250 * time.Millisecond
)

// ExecuteRetryable runs fn until it succeeds, fails with an error other than
// a serialization failure, or runs out of attempts.
func ExecuteRetryable(fn func() error) error {
	_, err := retry.Retry(
		fn,
		retry.RetriableErrors(ErrSerializationFailure),
		retry.Limit(maxSerializationRetries),
		retry.BackoffWithJitter(backoff.BinaryExponential(10*time.Millisecond), maxSerializationBackoff, 0.1),
	)
	return err
}

// ExecuteInTx runs fn within a new DB transaction at the provided isolation
// level. The transaction commits when fn returns nil and rolls back otherwise.
// Serialization failures are reported as ErrSerializationFailure.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if isolation == sql.LevelDefault {
		isolation = sql.LevelReadCommitted // Postgres default
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: isolation,
	})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		// Rollback is always required so sql.DB releases the connection
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return CheckSerializationFailure(err)
	}

	return CheckSerializationFailure(tx.Commit())
}
