// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-ics-sync/internal/adapter"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// ErrUserQuit is returned when the transfer was cancelled from the keyboard.
var ErrUserQuit = errors.New("cancelled by user")

var unreachableHints = []string{
	"connection refused",
	"dial tcp",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"context deadline exceeded",
}

// humanizeError shortens err to the line shown under a failed transfer.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	var code mapi.ErrorCode
	if errors.As(err, &code) {
		return "server refused: " + code.Error()
	}
	if errors.Is(err, adapter.ErrUnavailable) {
		return "server unavailable: " + err.Error()
	}

	s := strings.ToLower(err.Error())
	for _, hint := range unreachableHints {
		if strings.Contains(s, hint) {
			return "server unreachable: " + err.Error()
		}
	}
	return err.Error()
}
