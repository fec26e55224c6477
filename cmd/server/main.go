package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/handler"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/server"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/internal/workers"
	"github.com/MKhiriev/go-ics-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}

	log := logger.NewLogger("ics-server")
	log.Info().Interface("build", build).Msg("starting")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = build.Short()
	}

	log.Debug().Str("http", cfg.Server.HTTPAddress).Str("grpc", cfg.Server.GRPCAddress).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	if err = provisionDomain(ctx, storages.MailboxRepository, cfg.App); err != nil {
		log.Fatal().Err(err).Msg("error provisioning domain")
	}

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, storages, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	workers.NewWorkers(services.Sessions, cfg.Workers, log).Run(ctx)

	if err = srv.Run(ctx); err != nil {
		storages.Close()
		os.Exit(1)
	}
}

// provisionDomain creates the configured domain and its public store. A
// domain left over from an earlier start is kept.
func provisionDomain(ctx context.Context, repo store.MailboxRepository, cfg config.App) error {
	if cfg.Domain.ID == 0 {
		return nil
	}
	_, err := repo.CreateDomain(ctx, models.Domain{
		DomainID: cfg.Domain.ID,
		OrgID:    cfg.Domain.OrgID,
		Name:     cfg.Domain.Name,
	}, cfg.DefaultQuotaKiB)
	if err != nil && !errors.Is(err, store.ErrStoreExists) {
		return err
	}
	return nil
}
