package pg

import (
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
)

// ErrSerializationFailure indicates a transaction lost a conflict with a
// concurrent one and can be retried from the start
var ErrSerializationFailure = errors.New("pg: serialization failure")

func CheckNoRows(inErr, outErr error) error {
	if IsNoRows(inErr) {
		return outErr
	}
	return inErr
}

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// CheckSerializationFailure maps postgres serialization and deadlock errors
// onto ErrSerializationFailure
func CheckSerializationFailure(err error) error {
	if IsSerializationFailure(err) {
		return errors.Wrap(ErrSerializationFailure, err.Error())
	}
	return err
}

func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return true
		}
	}
	return false
}
