package client

import "errors"

var (
	// ErrNoProgress is returned when the server keeps answering a buffer
	// request with an empty partial buffer.
	ErrNoProgress = errors.New("transfer makes no progress")
	// ErrBadState is returned when a saved state is not a state stream.
	ErrBadState = errors.New("malformed synchronization state")
)
