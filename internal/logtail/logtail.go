package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tailChunk is how much of the file is read per step when scanning backwards.
const tailChunk = 32 << 10

// Read returns at most maxLines from the end of the file at path, reading
// backwards so a long log costs only its tail. A non-positive maxLines
// returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	if maxLines <= 0 {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return splitLines(data), nil
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	offset := info.Size()
	var buf []byte
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= maxLines {
		n := min(int64(tailChunk), offset)
		offset -= n
		chunk := make([]byte, n)
		if read, err := file.ReadAt(chunk, offset); err != nil && !(errors.Is(err, io.EOF) && int64(read) == n) {
			return nil, fmt.Errorf("read log: %w", err)
		}
		buf = append(chunk, buf...)
	}

	lines := splitLines(buf)
	if offset > 0 && len(lines) > 0 {
		// The first line starts before the bytes read.
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

func splitLines(data []byte) []string {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Entry is one record written by slog's text handler.
type Entry struct {
	Time  string
	Level string
	Msg   string
	Attrs []string
}

// Parse splits a "key=value" slog text line. ok is false for lines that
// carry no level or message.
func Parse(line string) (Entry, bool) {
	var e Entry
	for _, field := range splitFields(line) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			e.Attrs = append(e.Attrs, field)
			continue
		}
		switch key {
		case "time":
			e.Time = value
		case "level":
			e.Level = value
		case "msg":
			if unquoted, err := strconv.Unquote(value); err == nil {
				value = unquoted
			}
			e.Msg = value
		default:
			e.Attrs = append(e.Attrs, field)
		}
	}
	return e, e.Level != "" && e.Msg != ""
}

// splitFields splits on spaces outside double-quoted values.
func splitFields(line string) []string {
	var fields []string
	var b strings.Builder
	inQuote, escaped := false, false
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if b.Len() > 0 {
				fields = append(fields, b.String())
				b.Reset()
			}
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		fields = append(fields, b.String())
	}
	return fields
}

// Styles colors the parts of a log line.
type Styles struct {
	Time  lipgloss.Style
	Debug lipgloss.Style
	Info  lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
	Msg   lipgloss.Style
	Attr  lipgloss.Style
}

// ColorizeLine renders a slog text line compactly: clock time, level, message,
// then attributes. Lines that do not parse are returned unchanged.
func ColorizeLine(line string, s Styles) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}
	parts := make([]string, 0, 4)
	if clock := clockTime(e.Time); clock != "" {
		parts = append(parts, s.Time.Render(clock))
	}
	parts = append(parts, levelStyle(e.Level, s).Render(fmt.Sprintf("%-5s", e.Level)))
	parts = append(parts, s.Msg.Render(e.Msg))
	if len(e.Attrs) > 0 {
		parts = append(parts, s.Attr.Render(strings.Join(e.Attrs, " ")))
	}
	return strings.Join(parts, " ")
}

// ColorizeLines applies ColorizeLine to each line.
func ColorizeLines(lines []string, s Styles) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line, s)
	}
	return out
}

func levelStyle(level string, s Styles) lipgloss.Style {
	switch {
	case strings.HasPrefix(level, "ERROR"):
		return s.Error
	case strings.HasPrefix(level, "WARN"):
		return s.Warn
	case strings.HasPrefix(level, "DEBUG"):
		return s.Debug
	default:
		return s.Info
	}
}

// clockTime extracts HH:MM:SS from an RFC 3339 timestamp.
func clockTime(ts string) string {
	_, rest, ok := strings.Cut(ts, "T")
	if !ok || len(rest) < 8 {
		return ts
	}
	return rest[:8]
}
