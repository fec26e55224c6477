// Package workers runs the background jobs of the ROP server.
package workers

import (
	"context"
	"time"
)

// Worker is a background job. Run returns once the job is started; the job
// stops when ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// SessionExpirer drops ROP sessions that have been idle for too long.
type SessionExpirer interface {
	ExpireIdle(now time.Time, idle time.Duration) int
}
