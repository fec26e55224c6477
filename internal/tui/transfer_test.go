package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/adapter"
	"github.com/MKhiriev/go-ics-sync/internal/client"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m transferModel, msg tea.Msg) (transferModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(transferModel)
	require.True(t, ok)
	return got, cmd
}

func TestTransferModel_Progress(t *testing.T) {
	m := newTransferModel("Inbox")
	m, cmd := update(t, m, progressMsg{
		Status: ics.TransferPartial,
		Step:   1,
		Steps:  4,
		Bytes:  2048,
		Counts: client.Counts{Changes: 3, Deletions: 1},
	})
	assert.Nil(t, cmd)
	assert.InDelta(t, 0.25, m.percent(), 1e-9)

	view := m.View()
	assert.Contains(t, view, "Inbox")
	assert.Contains(t, view, "partial")
	assert.Contains(t, view, "2.0 KiB")
	assert.Contains(t, view, "q: cancel")
}

func TestTransferModel_Done(t *testing.T) {
	m := newTransferModel("Inbox")
	m, cmd := update(t, m, transferDoneMsg{result: client.Result{Bytes: 10, Counts: client.Counts{Changes: 7}}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.done)
	assert.Equal(t, 1.0, m.percent())

	view := m.View()
	assert.Contains(t, view, "done")
	assert.Contains(t, view, "7")
	assert.NotContains(t, view, "q: cancel")

	// Keys are ignored once the transfer is over.
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Nil(t, cmd)
	assert.False(t, m.quit)
}

func TestTransferModel_Failed(t *testing.T) {
	m := newTransferModel("Inbox")
	m, _ = update(t, m, progressMsg{Steps: 2, Step: 1})
	m, _ = update(t, m, transferDoneMsg{err: errors.New("dial tcp 127.0.0.1:8080: connection refused")})

	assert.InDelta(t, 0.5, m.percent(), 1e-9)
	assert.Contains(t, m.View(), "server unreachable")
}

func TestTransferModel_Quit(t *testing.T) {
	m := newTransferModel("Inbox")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quit)
	assert.Contains(t, m.View(), "cancelling")
}

func TestTransferModel_WindowSize(t *testing.T) {
	m := newTransferModel("Inbox")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, maxBarWidth, m.bar.Width)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 12, Height: 40})
	assert.Equal(t, 10, m.bar.Width)
}

func TestHumanizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "rop code", err: fmt.Errorf("Logon: %w", mapi.EcAccessDenied), want: "server refused: ecAccessDenied"},
		{name: "unavailable", err: fmt.Errorf("%w: busy", adapter.ErrUnavailable), want: "server unavailable: server unavailable: busy"},
		{name: "refused", err: errors.New("dial tcp 127.0.0.1:1: connection refused"), want: "server unreachable: dial tcp 127.0.0.1:1: connection refused"},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeError(tt.err))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.n))
	}
}

func TestRenderInfo(t *testing.T) {
	info := models.BuildInfo{Version: "v1.2.0", Commit: "abc123"}

	local := RenderInfo(info, nil)
	assert.Contains(t, local, "v1.2.0")
	assert.Contains(t, local, "N/A")
	assert.NotContains(t, local, "Server:")

	remote := RenderInfo(info, &models.ServerInfo{Version: "v1.3.0", Sessions: 2})
	assert.Contains(t, remote, "v1.3.0")
	assert.Contains(t, remote, "Sessions:")
}

func headless(input io.Reader) []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(input), tea.WithOutput(io.Discard), tea.WithoutSignals()}
}

func TestRunTransfer_ReturnsJobResult(t *testing.T) {
	want := client.Result{Bytes: 12, Counts: client.Counts{Changes: 2}, State: []byte{1}}
	job := func(_ context.Context, report client.ProgressFunc) (client.Result, error) {
		report(client.Progress{Status: ics.TransferPartial, Bytes: 6})
		report(client.Progress{Status: ics.TransferDone, Bytes: 12})
		return want, nil
	}

	got, err := RunTransfer(context.Background(), "Inbox", job, headless(nil)...)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunTransfer_ReturnsJobError(t *testing.T) {
	boom := errors.New("boom")
	job := func(context.Context, client.ProgressFunc) (client.Result, error) {
		return client.Result{}, boom
	}

	_, err := RunTransfer(context.Background(), "Inbox", job, headless(nil)...)
	require.ErrorIs(t, err, boom)
}

func TestRunTransfer_UserQuitCancelsJob(t *testing.T) {
	cancelled := make(chan struct{})
	job := func(ctx context.Context, _ client.ProgressFunc) (client.Result, error) {
		<-ctx.Done()
		close(cancelled)
		return client.Result{}, ctx.Err()
	}

	_, err := RunTransfer(context.Background(), "Inbox", job, headless(strings.NewReader("q"))...)
	require.ErrorIs(t, err, ErrUserQuit)

	select {
	case <-cancelled:
	default:
		t.Fatal("job still running after RunTransfer returned")
	}
}
