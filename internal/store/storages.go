package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
)

// Storages groups the server-side repositories so they can be handed to the
// service layer as one value.
type Storages struct {
	UserRepository    UserRepository
	MailboxRepository MailboxRepository

	db *DB
}

// NewStorages opens the database named by cfg.DB.DSN, runs the schema
// migrations for its dialect and wires the repositories to it.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		UserRepository:    NewUserRepository(db, logger),
		MailboxRepository: NewMailboxRepository(db, logger),
		db:                db,
	}, nil
}

// Close releases the underlying connection pool.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *Storages) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrNoConnection
	}
	return s.db.PingContext(ctx)
}
