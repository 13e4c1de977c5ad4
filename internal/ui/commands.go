package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/multilogue/internal/display"
	"github.com/five82/multilogue/internal/files"
	"github.com/five82/multilogue/internal/logtail"
	"github.com/five82/multilogue/internal/session"
)

// Messages

type stateOp int

const (
	opReconcile stateOp = iota
	opEdit
	opSave
)

// stateMsg reports the outcome of a reconciler transition. seq orders it
// against the other transitions the model has issued.
type stateMsg struct {
	op    stateOp
	seq   int
	state display.State
	err   error
}

type storageChangedMsg struct{}

type runCommandMsg struct{}

type showTokenPopupMsg struct{}

type alertMsg struct {
	text string
}

type machineDoneMsg struct {
	err error
}

type fileLoadedMsg struct {
	seq   int
	path  string
	size  int
	state display.State
	err   error
}

type currentTextMsg struct {
	text string
	err  error
}

type fileSavedMsg struct {
	path string
	size int
	err  error
}

type logsLoadedMsg struct {
	lines []string
	err   error
}

type headerTickMsg time.Time

// Commands

func reconcileCmd(r *display.Reconciler, seq int) tea.Cmd {
	return func() tea.Msg {
		st, err := r.Reconcile()
		return stateMsg{op: opReconcile, seq: seq, state: st, err: err}
	}
}

func enterEditCmd(r *display.Reconciler, seq int) tea.Cmd {
	return func() tea.Msg {
		st, err := r.EnterEdit()
		return stateMsg{op: opEdit, seq: seq, state: st, err: err}
	}
}

func saveCmd(r *display.Reconciler, seq int, text string) tea.Cmd {
	return func() tea.Msg {
		st, err := r.Save(text)
		return stateMsg{op: opSave, seq: seq, state: st, err: err}
	}
}

// loadFileCmd reads path and hands its content to the reconciler, which
// stores it and opens it for editing.
func loadFileCmd(r *display.Reconciler, seq int, path string) tea.Cmd {
	return func() tea.Msg {
		content, err := files.Open(path)
		if err != nil {
			return fileLoadedMsg{seq: seq, path: path, err: err}
		}
		st, err := r.LoadFromFile(content)
		return fileLoadedMsg{seq: seq, path: path, size: len(content), state: st, err: err}
	}
}

func currentTextCmd(r *display.Reconciler) tea.Cmd {
	return func() tea.Msg {
		text, err := r.Current()
		return currentTextMsg{text: text, err: err}
	}
}

func saveFileCmd(dir, name, text string) tea.Cmd {
	return func() tea.Msg {
		path, err := files.ResolveSavePath(dir, name)
		if err != nil {
			return fileSavedMsg{err: err}
		}
		if err := files.Save(path, text); err != nil {
			return fileSavedMsg{path: path, err: err}
		}
		return fileSavedMsg{path: path, size: len(text)}
	}
}

// runMachineCmd runs the flow off the event loop. interactive selects the
// user-gesture variant, which alerts on failure.
func runMachineCmd(ctx context.Context, flow *session.Flow, interactive bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if interactive {
			err = flow.RunInteractive(ctx)
		} else {
			err = flow.RunCommand(ctx)
		}
		return machineDoneMsg{err: err}
	}
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogOverlayLines)
		return logsLoadedMsg{lines: lines, err: err}
	}
}

func headerTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return headerTickMsg(t)
	})
}

func fadeCmd(seq int) tea.Cmd {
	return tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
		return logRecordFadeMsg{seq: seq}
	})
}
