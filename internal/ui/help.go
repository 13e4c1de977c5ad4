package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const helpWidth = 44

// helpSection is one titled group in the help overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

func (k keyMap) helpSections() []helpSection {
	return []helpSection{
		{"Dialogue", []key.Binding{k.Edit, k.Save, k.SaveToFile, k.OpenFile, k.Run}},
		{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageUp, k.HalfPageDown, k.Escape}},
		{"General", []key.Binding{k.CycleTheme, k.Logs, k.Help, k.Quit}},
	}
}

// renderHelp draws the key reference centered over the screen. Any key
// closes it.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	sections := m.keys.helpSections()

	keyWidth := 0
	for _, s := range sections {
		for _, b := range s.bindings {
			keyWidth = max(keyWidth, lipgloss.Width(b.Help().Key))
		}
	}
	keyStyle := styles.WarningText.Width(keyWidth + 2)

	blocks := make([]string, 0, len(sections)+1)
	blocks = append(blocks, styles.Text.Bold(true).Render("Keys")+"\n"+
		styles.FaintText.Render(strings.Repeat("─", helpWidth-6)))
	for _, s := range sections {
		rows := []string{styles.AccentText.Bold(true).Render(s.title)}
		for _, b := range s.bindings {
			h := b.Help()
			rows = append(rows, keyStyle.Render(h.Key)+styles.Text.Render(h.Desc))
		}
		blocks = append(blocks, strings.Join(rows, "\n"))
	}
	blocks = append(blocks, styles.FaintText.Render("Click the dialogue to edit it."))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Focus)).
		Padding(1, 2).
		Width(helpWidth).
		Render(strings.Join(blocks, "\n\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
