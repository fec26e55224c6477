package server

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/handler"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
)

type server struct {
	listeners []listener
	logger    *logger.Logger
}

// NewServer binds a listener for every configured transport. Binding
// happens here so that a taken port fails startup instead of Run.
func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	s := &server{logger: logger}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		httpSrv, err := newHTTPServer(handlers.HTTP.Init(), cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("HTTP server: %w", err)
		}
		s.listeners = append(s.listeners, httpSrv)
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		grpcSrv, err := newGRPCServer(handlers.GRPC, cfg, logger)
		if err != nil {
			s.shutdown()
			return nil, fmt.Errorf("gRPC server: %w", err)
		}
		s.listeners = append(s.listeners, grpcSrv)
	}

	if len(s.listeners) == 0 {
		return nil, errNoServersAreCreated
	}
	return s, nil
}

func (s *server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, l := range s.listeners {
		s.logger.Info().Str("address", l.addr()).Msgf("Launching %s server", l.name())
		g.Go(func() error {
			if err := l.serve(); err != nil {
				return fmt.Errorf("%s server: %w", l.name(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	err := g.Wait()
	if err != nil {
		s.logger.Err(err).Str("func", "*server.Run").Msg("server stopped with error")
		return err
	}
	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

func (s *server) shutdown() {
	for _, l := range s.listeners {
		l.shutdown()
	}
}
