package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the status bar record it was scheduled for.
type logRecordFadeMsg struct {
	seq int
}

// logRecordFadeDelay is how long a record stays in the status bar before
// the key hints return.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that routes records at or above its level
// into the program as logRecordMsg. Records arriving before SetSender are
// dropped. Handlers derived via WithAttrs/WithGroup share the sender.
type TUILogHandler struct {
	level  slog.Leveler
	ref    senderRef
	attrs  []slog.Attr
	groups []string
}

// NewTUILogHandler creates a handler for records at or above level.
func NewTUILogHandler(level slog.Leveler) *TUILogHandler {
	return &TUILogHandler{level: level, ref: newSenderRef()}
}

// SetSender attaches the program. Safe from any goroutine.
func (h *TUILogHandler) SetSender(s Sender) {
	h.ref.set(s)
}

// Enabled reports whether the handler is interested in records at level.
func (h *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record as "message (key=value, ...)" and posts it.
func (h *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	parts := make([]string, 0, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Key, a.Value))
	}
	prefix := groupPrefix(h.groups)
	record.Attrs(func(a slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s%s=%s", prefix, a.Key, a.Value))
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	h.ref.send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs returns a handler with attrs appended, sharing the sender.
// Attrs are qualified by the groups open at this point.
func (h *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := groupPrefix(h.groups)
	merged := sliceClone(h.attrs)
	for _, a := range attrs {
		a.Key = prefix + a.Key
		merged = append(merged, a)
	}
	return &TUILogHandler{
		level:  h.level,
		ref:    h.ref,
		attrs:  merged,
		groups: sliceClone(h.groups),
	}
}

// WithGroup returns a handler with name appended to the group path.
func (h *TUILogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &TUILogHandler{
		level:  h.level,
		ref:    h.ref,
		attrs:  sliceClone(h.attrs),
		groups: append(sliceClone(h.groups), name),
	}
}

func groupPrefix(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.Join(groups, ".") + "."
}

func sliceClone[T any](source []T) []T {
	if source == nil {
		return nil
	}
	result := make([]T, len(source))
	copy(result, source)
	return result
}
