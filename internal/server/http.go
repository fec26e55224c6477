package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
)

const shutdownTimeout = 10 * time.Second

type httpServer struct {
	server   *http.Server
	listener net.Listener
	logger   *logger.Logger
}

// newHTTPServer binds cfg.HTTPAddress. With cfg.RequestTimeout set, a ROP
// running longer is answered with 503.
func newHTTPServer(handler http.Handler, cfg config.Server, logger *logger.Logger) (*httpServer, error) {
	ln, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.HTTPAddress, err)
	}
	if cfg.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, cfg.RequestTimeout, "request timed out")
	}
	return &httpServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: ln,
		logger:   logger,
	}, nil
}

func (h *httpServer) name() string { return "HTTP" }

func (h *httpServer) addr() string { return h.listener.Addr().String() }

func (h *httpServer) serve() error {
	if err := h.server.Serve(h.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdown stops accepting connections and waits for in-flight ROPs.
func (h *httpServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	h.logger.Info().Msg("HTTP server Shutdown")
	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Err(err).Str("func", "*httpServer.shutdown").Msg("HTTP server Shutdown")
	}
	// Shutdown does not close a listener that Serve never took over.
	_ = h.listener.Close()
}
