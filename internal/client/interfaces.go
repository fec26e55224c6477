// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"io"
)

// Client defines the jobs icsctl can run.
type Client interface {
	// Download runs one incremental synchronization and writes the change
	// stream to out.
	Download(ctx context.Context, opts DownloadOptions, out io.Writer, report ProgressFunc) (Result, error)
}

// ProgressFunc receives a report after every transfer buffer. It is called
// from the goroutine running the job.
type ProgressFunc func(Progress)
