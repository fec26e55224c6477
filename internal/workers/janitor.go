package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
)

// SessionJanitor periodically drops idle ROP sessions so their handle
// tables and open stores are released.
type SessionJanitor struct {
	sessions SessionExpirer
	interval time.Duration
	idle     time.Duration
	now      func() time.Time

	logger *logger.Logger
}

func NewSessionJanitor(sessions SessionExpirer, interval, idle time.Duration, logger *logger.Logger) *SessionJanitor {
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		idle:     idle,
		now:      time.Now,
		logger:   logger,
	}
}

// Run starts the sweep loop in its own goroutine.
func (j *SessionJanitor) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.logger.Info().Msg("session janitor stopped")
				return
			case <-ticker.C:
				j.sweep()
			}
		}
	}()
}

func (j *SessionJanitor) sweep() int {
	n := j.sessions.ExpireIdle(j.now(), j.idle)
	if n > 0 {
		j.logger.Info().Int("expired", n).Dur("idle", j.idle).Msg("idle ROP sessions dropped")
	}
	return n
}
