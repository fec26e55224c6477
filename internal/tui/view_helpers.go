package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const notAvailable = "N/A"

var (
	pageStyle  = lipgloss.NewStyle().Padding(1, 2)
	bodyStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderBottom(true).PaddingTop(1).PaddingBottom(1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
	labelStyle = lipgloss.NewStyle().Width(13)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// renderPage lays out a titled page. An empty body shows a dash and the
// help line is omitted when there is nothing to say.
func renderPage(title, body, help string) string {
	if strings.TrimSpace(body) == "" {
		body = "-"
	}
	parts := []string{titleStyle.Render(title), bodyStyle.Render(body)}
	if strings.TrimSpace(help) != "" {
		parts = append(parts, helpStyle.Render(help))
	}
	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func valueOrNA(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return notAvailable
}
