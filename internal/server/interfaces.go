package server

import "context"

// Server runs the configured transports until its context is cancelled.
type Server interface {
	// Run blocks until ctx is done or a listener fails, then stops every
	// listener gracefully. It returns the first listener failure.
	Run(ctx context.Context) error
}

// listener is one transport run by a Server.
type listener interface {
	name() string
	addr() string
	// serve blocks until the listener is shut down or fails. A shutdown
	// is not a failure.
	serve() error
	shutdown()
}
