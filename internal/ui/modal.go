package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const modalWidth = 56

func placeModal(theme Theme, width, height int, border string, body string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Background(lipgloss.Color(theme.Panel)).
		Padding(1, 2).
		Width(modalWidth)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(body),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// alertModal shows a message until enter or esc.
type alertModal struct {
	text string
}

func newAlertModal(text string) alertModal {
	return alertModal{text: text}
}

func (a alertModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(k, keys.Confirm, keys.Escape) {
			return a, nil, true
		}
	}
	return a, nil, false
}

func (a alertModal) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Panel)
	var b strings.Builder
	b.WriteString(styles.WarningText.Bold(true).Render("Notice"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(wordwrap.String(a.text, modalWidth-6)))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter/esc to close"))
	return placeModal(theme, width, height, theme.Warning, b.String())
}

// saveAsModal asks for a file name. Closing it without confirming is a
// cancellation.
type saveAsModal struct {
	dir   string
	text  string
	input textinput.Model
}

// saveAsConfirmedMsg carries the raw name the user confirmed.
type saveAsConfirmedMsg struct {
	dir  string
	name string
	text string
}

func newSaveAsModal(dir, suggested, text string) saveAsModal {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.SetValue(suggested)
	ti.CursorEnd()
	ti.Width = modalWidth - 10
	ti.Focus()
	return saveAsModal{dir: dir, text: text, input: ti}
}

func (s saveAsModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return s, nil, true
		case key.Matches(k, keys.Confirm):
			confirmed := saveAsConfirmedMsg{dir: s.dir, name: s.input.Value(), text: s.text}
			return s, func() tea.Msg { return confirmed }, true
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, false
}

func (s saveAsModal) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Panel)
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Save dialogue to file"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("in " + truncateMiddle(filepath.Clean(s.dir), modalWidth-10)))
	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter to save · esc to cancel"))
	return placeModal(theme, width, height, theme.Accent, b.String())
}
