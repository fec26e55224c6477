package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-ics-sync/internal/client"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const maxBarWidth = 60

// transferModel shows a running download: a spinner while buffers arrive,
// a bar for the server's step counter and the change tallies.
type transferModel struct {
	title   string
	spinner spinner.Model
	bar     progress.Model

	last   client.Progress
	result client.Result
	err    error
	done   bool
	quit   bool
}

func newTransferModel(title string) transferModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return transferModel{
		title:   title,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m transferModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m transferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) && !m.done {
			m.quit = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-8, 10), maxBarWidth)
	case progressMsg:
		m.last = client.Progress(msg)
	case transferDoneMsg:
		m.done, m.result, m.err = true, msg.result, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m transferModel) percent() float64 {
	if m.done && m.err == nil {
		return 1
	}
	if m.last.Steps == 0 {
		return 0
	}
	return min(float64(m.last.Step)/float64(m.last.Steps), 1)
}

func (m transferModel) View() string {
	counts, bytes := m.last.Counts, m.last.Bytes
	if m.done && m.err == nil {
		counts, bytes = m.result.Counts, m.result.Bytes
	}

	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("failed: " + humanizeError(m.err)))
	case m.done:
		b.WriteString(doneStyle.Render("done"))
	case m.quit:
		b.WriteString("cancelling...")
	default:
		b.WriteString(m.spinner.View() + " " + m.last.Status.String())
	}
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		row("Changes:", strconv.Itoa(counts.Changes)),
		row("Deletions:", strconv.Itoa(counts.Deletions)),
		row("Read states:", strconv.Itoa(counts.ReadStates)),
		row("Received:", formatBytes(bytes)),
	}, "\n"))

	help := "q: cancel"
	if m.done {
		help = ""
	}
	return renderPage(m.title, b.String(), help)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
