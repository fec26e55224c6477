package http

import "errors"

// ErrEmptyAuthorizationHeader is reported to clients that call a
// protected route without credentials.
var ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")
