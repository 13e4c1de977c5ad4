package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"

	"github.com/five82/multilogue/internal/ui"
)

// tuiLevel is the lowest level shown in the status bar. The log file gets
// everything at or above the configured level.
const tuiLevel = slog.LevelWarn

// logging owns the application logger and its sinks.
type logging struct {
	Logger *slog.Logger
	TUI    *ui.TUILogHandler
	file   io.Closer
}

// newLogging fans records out to a text log file and the TUI status bar.
func newLogging(path string, level slog.Level) (*logging, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	tui := ui.NewTUILogHandler(maxLevel(level, tuiLevel))
	handlers := []slog.Handler{
		slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}),
		tui,
	}
	logger := slog.New(slogmulti.Fanout(handlers...))
	slog.SetDefault(logger)

	return &logging{Logger: logger, TUI: tui, file: file}, nil
}

// Close closes the log file.
func (l *logging) Close() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
}

func maxLevel(a, b slog.Level) slog.Level {
	if a > b {
		return a
	}
	return b
}
