// Package ui is the Bubble Tea front end of multilogue.
//
// # Layout
//
// One header line (logo, mode badge, machine activity, store path), the
// dialogue area, and one status line. The dialogue area shows exactly one
// of three things, following display.Mode:
//
//   - Picking: a file picker over the remembered directory
//   - Viewing: the rendered dialogue in a scrollable viewport
//   - Editing: a textarea holding the raw dialogue
//
// Overlays stack above it in this order: alert or save-as modal, token
// popup, help, log tail.
//
// # Event Flow
//
// The model never touches the store directly. Key and mouse gestures become
// commands that call the display.Reconciler off the event loop; the
// resulting state comes back as a stateMsg and is applied in Update.
// Every transition is numbered when issued, and a result older than the
// newest issued transition is dropped, so a slow reconcile cannot undo a
// later edit.
// Storage notifications (watcher, poller, machine replies) and terminal
// focus both trigger a reconcile.
//
// Other goroutines reach the model through Bridge, which implements
// session.Affordances, and through TUILogHandler, which forwards warn+ log
// records to the status bar where they fade after a few seconds. Both
// deliver with a non-blocking send, since they can be called from within
// Update.
//
// # Key Bindings
//
//   - enter/e or click: edit the dialogue
//   - ctrl+s: save the edit buffer and return to the derived mode
//   - ctrl+w: save the stored dialogue to a file
//   - ctrl+o: open a file into the editor
//   - ctrl+r: run the machine
//   - esc: dismiss the token popup, picker, or dialog
//   - T: cycle theme (persisted to prefs)
//   - ctrl+l: log overlay
//   - ?: help
//   - ctrl+c: quit
package ui
