package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/multilogue/internal/logtail"
)

func (m *Model) fillLogView(msg logsLoadedMsg) {
	styles := m.theme.Styles()
	switch {
	case msg.err != nil:
		m.logView.SetContent(styles.DangerText.Render("Could not read log: " + msg.err.Error()))
	case len(msg.lines) == 0:
		m.logView.SetContent(styles.FaintText.Render("No log entries yet."))
	default:
		m.logView.SetContent(strings.Join(logtail.ColorizeLines(msg.lines, m.theme.LogStyles()), "\n"))
	}
	m.logView.GotoBottom()
}

// renderLogs renders the log overlay in a bordered box.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Log") + " " +
		styles.FaintText.Render(truncateMiddle(m.logPath, max(m.width-12, 10)))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Focus)).
		Width(m.width - 2).
		Height(max(m.height-4, 1)).
		Render(title + "\n" + m.logView.View())
	hint := styles.FaintText.Render(" j/k scroll · esc or ctrl+l to close")
	return box + "\n" + hint
}
