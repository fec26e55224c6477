// Package handler assembles the transports the server listens on.
package handler

import (
	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-ics-sync/internal/handler/http"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
)

// Handlers holds one handler per configured listener. A nil field means
// the matching address is not configured.
type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// NewHandlers builds the transport handlers for the configured listeners.
// db backs the gRPC health check and may be nil.
func NewHandlers(services *service.Services, db grpc.Pinger, cfg config.Server, log *logger.Logger) (*Handlers, error) {
	var h Handlers
	if cfg.HTTPAddress != "" {
		h.HTTP = http.NewHandler(services, cfg, log)
	}
	if cfg.GRPCAddress != "" {
		h.GRPC = grpc.NewHandler(services, db, log)
	}
	if h.HTTP == nil && h.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	log.Info().
		Bool("http", h.HTTP != nil).
		Bool("grpc", h.GRPC != nil).
		Msg("transport handlers ready")
	return &h, nil
}
