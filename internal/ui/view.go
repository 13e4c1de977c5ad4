package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/multilogue/internal/display"
	"github.com/five82/multilogue/internal/files"
)

// renderMain renders header, dialogue area and status bar.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderContent shows exactly one of picker, editor or rendered dialogue.
func (m Model) renderContent() string {
	h := m.contentHeight()
	var body string
	switch {
	case m.pickerOpen || m.state.Mode == display.Picking:
		body = m.renderPicker()
	case m.state.Mode == display.Editing:
		body = m.editor.View()
	default:
		body = m.view.View()
	}
	column := lipgloss.NewStyle().
		Width(m.contentWidth()).
		Height(h).
		MaxHeight(h).
		Render(body)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, column)
}

func (m Model) renderPicker() string {
	styles := m.theme.Styles()
	title := "Open a dialogue"
	if m.pickerOpen {
		title = "Open a dialogue (esc to cancel)"
	}
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render(strings.Join(files.Extensions(), " ")))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(truncateMiddle(m.picker.CurrentDirectory, m.contentWidth())))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	return b.String()
}

func (m Model) renderTokenPopup() string {
	styles := m.theme.Styles().WithBackground(m.theme.Panel)
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("API token required"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("The token could not be fetched. Paste one to use for this session."))
	b.WriteString("\n\n")
	b.WriteString(m.tokenInput.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter to save · esc to cancel"))
	return placeModal(m.theme, m.width, m.height, m.theme.Focus, b.String())
}
