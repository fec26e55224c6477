package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/migrations"
)

// Dialect names the SQL backend a DB talks to.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ErrorClassificator decides whether a failed statement may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// querier is the part of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
	dialect            Dialect
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func newDB(conn *sql.DB, dialect Dialect, classifier ErrorClassificator, log *logger.Logger) *DB {
	format := sq.PlaceholderFormat(sq.Question)
	if dialect == DialectPostgres {
		format = sq.Dollar
	}
	return &DB{
		DB:                 conn,
		dialect:            dialect,
		builder:            sq.StatementBuilder.PlaceholderFormat(format),
		errorClassificator: classifier,
		logger:             log,
	}
}

// NewConnect opens the database named by cfg.DSN. postgres:// and
// postgresql:// DSNs go to PostgreSQL; anything else is a SQLite file.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return NewConnectPostgres(ctx, cfg, log)
	}
	return NewConnectSQLite(ctx, cfg, log)
}

func (db *DB) Dialect() Dialect { return db.dialect }

// Migrate brings the schema up to date.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := migrations.Migrate(ctx, db.DB, string(db.dialect))
	if err != nil {
		return err
	}
	db.logger.Info().Str("dialect", string(db.dialect)).Int64("version", version).Msg("schema is up to date")
	return nil
}

// withTx runs fn in a transaction. A failure the classifier marks as
// retryable reruns fn once in a fresh transaction.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	err := db.runTx(ctx, fn)
	if err != nil && db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "DB.withTx").
			Msg("retrying transaction")
		err = db.runTx(ctx, fn)
	}
	return err
}

func (db *DB) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

// sqlizer is implemented by every squirrel builder.
type sqlizer interface {
	ToSql() (string, []any, error)
}

func exec(ctx context.Context, q querier, b sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return res, nil
}

func queryRow(ctx context.Context, q querier, b sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

func query(ctx context.Context, q querier, b sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return rows, nil
}
