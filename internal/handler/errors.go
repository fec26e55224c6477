package handler

import "errors"

// errNoHandlersAreCreated means the configuration names neither an HTTP nor
// a gRPC address, so the server would have nothing to serve.
var errNoHandlersAreCreated = errors.New("no handlers are created")
