package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-ics-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-ics-sync/internal/logger"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

type grpcServer struct {
	handler *myGRPC.Handler

	server          *grpc.Server
	gRPCNetListener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) (*grpcServer, error) {
	listener, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.GRPCAddress, err)
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogging(logger)))
	healthpb.RegisterHealthServer(server, handler)
	reflection.Register(server)

	return &grpcServer{
		handler:         handler,
		server:          server,
		gRPCNetListener: listener,
		logger:          logger,
	}, nil
}

func (g *grpcServer) name() string { return "gRPC" }

func (g *grpcServer) addr() string { return g.gRPCNetListener.Addr().String() }

func (g *grpcServer) serve() error {
	if err := g.server.Serve(g.gRPCNetListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (g *grpcServer) shutdown() {
	g.logger.Info().Msg("GRPC server Shutdown")
	g.server.GracefulStop()
	_ = g.gRPCNetListener.Close()
}

// unaryLogging writes one access log line per unary call.
func unaryLogging(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(log.WithContext(ctx), req)

		log.Info().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Send()
		return resp, err
	}
}
