package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/models"
	sq "github.com/Masterminds/squirrel"
)

const usersTable = "users"

var userColumns = []string{"user_id", "login", "name", "auth_hash", "created_at"}

func scanUser(row sq.RowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.UserID, &u.Login, &u.Name, &u.AuthHash, &u.CreatedAt)
	return u, err
}

// userRepository is the SQL implementation of [UserRepository]. It handles
// user account creation and lookup against the "users" table.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns it with the
// server-assigned fields (UserID, CreatedAt).
//
// Error handling:
//   - unique violation on login → [ErrLoginAlreadyExists].
//   - any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row, err := queryRow(ctx, r.db, r.db.builder.
		Insert(usersTable).
		Columns("login", "name", "auth_hash").
		Values(user.Login, user.Name, user.AuthHash).
		Suffix("RETURNING "+strings.Join(userColumns, ", ")))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error building query")
		return models.User{}, err
	}

	created, err := scanUser(row)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error creating user")
		if isUniqueViolation(err) {
			return models.User{}, ErrLoginAlreadyExists
		}
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

// FindUserByLogin retrieves the user record with the given login.
//
// Error handling:
//   - no matching row → [ErrNoUserWasFound].
//   - any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	log := logger.FromContext(ctx)

	row, err := queryRow(ctx, r.db, r.db.builder.
		Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"login": login}))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Msg("error building query")
		return models.User{}, err
	}

	found, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Msg("error scanning user")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return found, nil
}
