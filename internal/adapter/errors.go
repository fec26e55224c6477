package adapter

import "errors"

// Transport failures of the ROP API, keyed by HTTP status. ROP outcomes are
// not among them: a failed ROP comes back as a [mapi.ErrorCode].
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("client unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrNotFound covers unknown sessions and unknown ROP names.
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	// ErrUnavailable is returned when the server timed the request out or
	// is shutting down.
	ErrUnavailable = errors.New("server unavailable")
)
