package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/multilogue/internal/session"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

type senderBox struct{ s Sender }

// senderRef is shared by everything that posts into the program before it
// exists. Sends are asynchronous: program.Send blocks until the event loop
// reads the message, and callers may be running inside Update.
type senderRef struct {
	p *atomic.Pointer[senderBox]
}

func newSenderRef() senderRef {
	return senderRef{p: &atomic.Pointer[senderBox]{}}
}

func (r senderRef) set(s Sender) {
	if s == nil {
		r.p.Store(nil)
		return
	}
	r.p.Store(&senderBox{s: s})
}

func (r senderRef) send(msg tea.Msg) bool {
	box := r.p.Load()
	if box == nil {
		return false
	}
	go box.s.Send(msg)
	return true
}

// Bridge implements session.Affordances on top of the program, and carries
// watcher and signal notifications into it. Create it before the program and
// call SetSender once the program exists.
type Bridge struct {
	ref senderRef
}

// NewBridge returns a Bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{ref: newSenderRef()}
}

// SetSender attaches the program. Safe from any goroutine.
func (b *Bridge) SetSender(s Sender) {
	b.ref.set(s)
}

// ShowTokenPopup asks the UI to show the token popup. Without a program there
// is nowhere to show it.
func (b *Bridge) ShowTokenPopup() error {
	if !b.ref.send(showTokenPopupMsg{}) {
		return session.ErrNoTokenPopup
	}
	return nil
}

// Alert shows msg in a modal. Dropped when no program is attached.
func (b *Bridge) Alert(msg string) {
	b.ref.send(alertMsg{text: msg})
}

// StorageChanged tells the UI the store was modified externally.
func (b *Bridge) StorageChanged() {
	b.ref.send(storageChangedMsg{})
}

// RequestRun delivers an external "run machine" command.
func (b *Bridge) RequestRun() {
	b.ref.send(runCommandMsg{})
}

var _ session.Affordances = (*Bridge)(nil)
