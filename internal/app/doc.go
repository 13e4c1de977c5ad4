// Package app is the composition root for multilogue.
//
// Run loads the config, opens the dialogue store, builds the machine client,
// token flow and display reconciler, then starts the TUI and blocks until the
// user quits or the context is cancelled.
//
// # Startup
//
//  1. config.Load, then command-line overrides (store path, settings, poll)
//  2. newLogging: slog fan-out to the log file and the status bar
//  3. prefs.Load and settings.Parse (settings logged once, token excluded)
//  4. store.Open and config.LoadMachine
//  5. machine.NewClient, machine.NewRunner, session.New
//  6. render.New and display.New
//  7. watchStore, ui.NewProgram, SIGUSR1 handler
//
// # Change detection
//
// The store file is watched with inotify. Each event is checked against the
// store digest, so rewrites by this process are ignored. Where inotify is
// unavailable StartPoller checks the digest on a ticker instead, backing off
// after read failures (capped at 30s).
//
// # External run command
//
// SIGUSR1 asks the running instance to send the dialogue to the machine:
//
//	pkill -USR1 multilogue
//
// # Errors
//
// Config, log file, store and client construction errors are returned from
// Run. Everything after the TUI starts is logged or shown in the UI.
package app
