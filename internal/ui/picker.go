package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/multilogue/internal/display"
	"github.com/five82/multilogue/internal/files"
)

// pickerHeaderLines is the title, directory and blank line above the list.
const pickerHeaderLines = 3

// newPicker lists dialogue files under the remembered directory.
func (m Model) newPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = files.Extensions()
	fp.CurrentDirectory = m.prefs.StartDir()
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Cursor = "›"
	fp.Styles = m.pickerStyles()
	fp.Height = max(m.contentHeight()-pickerHeaderLines, 1)
	fp, _ = fp.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	return fp
}

func (m Model) pickerStyles() filepicker.Styles {
	styles := m.theme.Styles()
	s := filepicker.DefaultStyles()
	s.Cursor = styles.AccentText.Bold(true)
	s.Selected = styles.AccentText.Bold(true)
	s.Directory = styles.InfoText
	s.File = styles.Text
	s.DisabledFile = styles.FaintText
	s.EmptyDirectory = styles.FaintText.SetString("No dialogue files here.")
	return s
}

// sizePicker fits the list to the content area. The picker only recomputes
// its window on a size message.
func (m *Model) sizePicker() {
	m.picker.Height = max(m.contentHeight()-pickerHeaderLines, 1)
	m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
}

// resetPicker starts a fresh listing of the remembered directory.
func (m *Model) resetPicker() tea.Cmd {
	m.picker = m.newPicker()
	return m.picker.Init()
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.pickerOpen = true
	m.editor.Blur()
	cmd := m.resetPicker()
	return m, cmd
}

// closePicker dismisses the overlay picker. Nothing changes; a cancelled
// open is not reported.
func (m *Model) closePicker() tea.Cmd {
	m.pickerOpen = false
	if m.state.Mode == display.Editing {
		return m.editor.Focus()
	}
	return nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	picking := m.state.Mode == display.Picking && !m.pickerOpen
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.pickerOpen {
			cmd := m.closePicker()
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()
	case picking && msg.String() == "e":
		// Start a dialogue from scratch.
		cmd := m.enterEdit()
		return m, cmd
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.pickerOpen = false
		cmd := m.loadFile(path)
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.pickerOpen = false
		cmd := m.loadFile(path)
		return m, cmd
	}
	return m, cmd
}
