package workers

import (
	"context"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
)

type Workers struct {
	workers []Worker
}

// NewWorkers returns the server's background jobs: the session janitor.
func NewWorkers(sessions SessionExpirer, cfg config.Workers, logger *logger.Logger) *Workers {
	return &Workers{workers: []Worker{
		NewSessionJanitor(sessions, cfg.JanitorInterval, cfg.SessionIdleTimeout, logger),
	}}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}
