// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog.Logger for the ICS server and the icsctl
// client.
//
// Entries are JSON objects carrying a "role" field, a "time" field and a
// "func" field holding the fully-qualified name of the logging function.
// Request-scoped loggers travel in the context; fetch them with
// [FromContext] or [FromRequest].
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger, so the whole zerolog API is available on it.
type Logger struct {
	zerolog.Logger
}

var configureOnce sync.Once

func configure() {
	configureOnce.Do(func() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zerolog.CallerFieldName = "func"
		zerolog.CallerMarshalFunc = func(pc uintptr, _ string, _ int) string {
			return runtime.FuncForPC(pc).Name()
		}
	})
}

// New returns a logger writing JSON entries for role to w.
func New(w io.Writer, role string) *Logger {
	configure()
	return &Logger{zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()}
}

// NewLogger returns the server logger, writing to stdout.
func NewLogger(role string) *Logger {
	return New(os.Stdout, role)
}

// NewClientLogger returns a logger that appends to ClientLogPath(role) so
// that log lines never mix with command output. If the file cannot be
// opened the logger falls back to stderr.
func NewClientLogger(role string) *Logger {
	var w io.Writer = os.Stderr
	if path, err := ClientLogPath(role); err == nil {
		if err = os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
			if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
				w = f
			}
		}
	}
	return New(w, role)
}

// ClientLogPath is <user cache dir>/go-ics-sync/<role>.log.
func ClientLogPath(role string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "go-ics-sync", role+".log"), nil
}

// Nop returns a logger that discards everything. Use it in tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a copy of l that can be enriched without touching l.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// AtLevel returns a copy of l that drops entries below level.
func (l *Logger) AtLevel(level zerolog.Level) *Logger {
	return &Logger{l.Level(level)}
}

// FromRequest returns the logger attached to the request context.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

// FromContext returns the logger attached to ctx by zerolog's WithContext.
// Without one it returns zerolog's default logger, never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
