// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders icsctl's interactive views with bubbletea.
package tui

import (
	"context"

	"github.com/MKhiriev/go-ics-sync/internal/client"
	tea "github.com/charmbracelet/bubbletea"
)

// Job is a transfer whose progress is shown while it runs.
type Job func(ctx context.Context, report client.ProgressFunc) (client.Result, error)

// RunTransfer runs job in the background and shows its progress until it
// finishes or the user cancels. Cancelling cancels the job's context and
// waits for it to return; the result is then [ErrUserQuit].
func RunTransfer(ctx context.Context, title string, job Job, opts ...tea.ProgramOption) (client.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newTransferModel(title), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	jobDone := make(chan struct{})
	go func() {
		defer close(jobDone)
		res, err := job(ctx, func(pr client.Progress) { p.Send(progressMsg(pr)) })
		p.Send(transferDoneMsg{result: res, err: err})
	}()

	final, runErr := p.Run()
	cancel()
	<-jobDone
	if runErr != nil {
		return client.Result{}, runErr
	}

	m, ok := final.(transferModel)
	if !ok {
		return client.Result{}, tea.ErrProgramKilled
	}
	if m.quit {
		return client.Result{}, ErrUserQuit
	}
	return m.result, m.err
}
