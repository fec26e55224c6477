package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells [DB.withTx] whether a failed transaction may be
// run again.
type ErrorClassification int

const (
	NonRetryable ErrorClassification = iota
	Retryable
)

// retryablePgCodes are the SQLSTATEs after which a mailbox transaction is
// rerun: lost connections, serialization failures and deadlocks between
// two sessions allocating ids or change numbers, and lock timeouts.
var retryablePgCodes = map[string]struct{}{
	pgerrcode.ConnectionException:    {},
	pgerrcode.ConnectionDoesNotExist: {},
	pgerrcode.ConnectionFailure:      {},
	pgerrcode.TransactionRollback:    {},
	pgerrcode.SerializationFailure:   {},
	pgerrcode.DeadlockDetected:       {},
	pgerrcode.LockNotAvailable:       {},
	pgerrcode.CannotConnectNow:       {},
}

// PostgresErrorClassifier implements [ErrorClassificator] for pgx errors.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if _, ok := retryablePgCodes[postgresError(err)]; ok {
		return Retryable
	}
	return NonRetryable
}

// postgresError returns the SQLSTATE of err, or "" when err does not come
// from PostgreSQL.
func postgresError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
