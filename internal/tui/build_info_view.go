// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strconv"
	"strings"

	"github.com/MKhiriev/go-ics-sync/models"
)

// RenderInfo renders the client build and, when known, the server it
// talks to.
func RenderInfo(info models.BuildInfo, server *models.ServerInfo) string {
	lines := []string{
		row("Version:", valueOrNA(info.Version)),
		row("Date:", valueOrNA(info.Date)),
		row("Commit:", valueOrNA(info.Commit)),
	}
	if server != nil {
		lines = append(lines, "",
			row("Server:", valueOrNA(server.Version)),
			row("Sessions:", strconv.Itoa(server.Sessions)),
		)
	}

	return renderPage("icsctl", strings.Join(lines, "\n"), "")
}
