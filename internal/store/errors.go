package store

import "errors"

// Domain failures. Match them with [errors.Is].
var (
	ErrLoginAlreadyExists = errors.New("login already exists")
	ErrNoUserWasFound     = errors.New("no user was found")

	// ErrStoreNotFound means no mailbox matches the requested account.
	ErrStoreNotFound = errors.New("store was not found")
	ErrStoreExists   = errors.New("store already exists")

	// ErrIDSpaceExhausted means a replica or named property id cannot be
	// assigned because the 16-bit range is used up.
	ErrIDSpaceExhausted = errors.New("id space exhausted")

	ErrNoConnection = errors.New("no database connection")
)

// SQL-level failures, wrapped around the driver error before any domain
// logic runs.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to execute statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")

	// ErrDecodingBlob means a stored property blob does not decode.
	ErrDecodingBlob = errors.New("failed to decode stored properties")
)
