package tui

import "github.com/MKhiriev/go-ics-sync/internal/client"

type progressMsg client.Progress

type transferDoneMsg struct {
	result client.Result
	err    error
}
