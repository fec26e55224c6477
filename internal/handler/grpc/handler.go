package grpc

import (
	"context"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name the ROP service answers health checks under.
// The empty name reports the server as a whole.
const ServiceName = "ics.Rop"

const pingTimeout = 2 * time.Second

// Pinger reports whether the mailbox database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the standard gRPC health protocol. The server is SERVING
// while the mailbox database answers pings.
type Handler struct {
	healthpb.UnimplementedHealthServer

	services *service.Services
	db       Pinger

	logger *logger.Logger
}

// NewHandler returns a health handler. A nil db always reports SERVING.
func NewHandler(services *service.Services, db Pinger, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		db:       db,
		logger:   logger,
	}
}

func (h *Handler) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}
	return &healthpb.HealthCheckResponse{Status: h.status(ctx)}, nil
}

func (h *Handler) status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if h.db == nil {
		return healthpb.HealthCheckResponse_SERVING
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Err(err).Str("func", "*Handler.status").Msg("mailbox database is unreachable")
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
