package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func writeLog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "multilogue.log")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRead(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("level=INFO msg=\"line %d\"", i))
	}
	path := writeLog(t, strings.Join(all, "\n")+"\n")

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"zero reads all", 0, all},
		{"negative reads all", -1, all},
		{"tail of five", 5, all[5:]},
		{"exactly all", 10, all},
		{"more than exist", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRead_TailSpansChunks(t *testing.T) {
	var b strings.Builder
	const total = 5000
	for i := 0; i < total; i++ {
		fmt.Fprintf(&b, "time=2026-10-19T10:00:00Z level=DEBUG msg=\"tick %04d\"\n", i)
	}
	if b.Len() <= 2*tailChunk {
		t.Fatalf("fixture too small: %d bytes", b.Len())
	}
	path := writeLog(t, b.String())

	got, err := Read(path, 3)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{
		`time=2026-10-19T10:00:00Z level=DEBUG msg="tick 4997"`,
		`time=2026-10-19T10:00:00Z level=DEBUG msg="tick 4998"`,
		`time=2026-10-19T10:00:00Z level=DEBUG msg="tick 4999"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Read() = %q, want %q", got, want)
	}

	got, err = Read(path, 1000)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1000 || got[0] != `time=2026-10-19T10:00:00Z level=DEBUG msg="tick 4000"` {
		t.Fatalf("Read(1000) = %d lines starting %q", len(got), got[0])
	}
}

func TestRead_NoTrailingNewlineAndEmpty(t *testing.T) {
	got, err := Read(writeLog(t, "first\r\nsecond\nthird"), 2)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"second", "third"}) {
		t.Fatalf("Read() = %q", got)
	}

	got, err = Read(writeLog(t, ""), 5)
	if err != nil || got != nil {
		t.Fatalf("Read(empty) = %q, %v", got, err)
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil || lines != nil {
		t.Fatalf("Read(missing) = %v, %v, want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
		ok    bool
	}{
		{
			name:  "quoted message with attrs",
			input: `time=2026-10-19T09:15:02.123+02:00 level=WARN msg="token fetch failed" error="fetch token: status 502: bad gateway"`,
			want: Entry{
				Time:  "2026-10-19T09:15:02.123+02:00",
				Level: "WARN",
				Msg:   "token fetch failed",
				Attrs: []string{`error="fetch token: status 502: bad gateway"`},
			},
			ok: true,
		},
		{
			name:  "bare message",
			input: "time=2026-10-19T09:15:02Z level=INFO msg=reconciled mode=viewing bytes=42",
			want: Entry{
				Time:  "2026-10-19T09:15:02Z",
				Level: "INFO",
				Msg:   "reconciled",
				Attrs: []string{"mode=viewing", "bytes=42"},
			},
			ok: true,
		},
		{
			name:  "not a slog line",
			input: "panic: runtime error",
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestColorizeLine(t *testing.T) {
	plain := Styles{
		Time: lipgloss.NewStyle(), Debug: lipgloss.NewStyle(), Info: lipgloss.NewStyle(),
		Warn: lipgloss.NewStyle(), Error: lipgloss.NewStyle(), Msg: lipgloss.NewStyle(), Attr: lipgloss.NewStyle(),
	}
	got := ColorizeLine(`time=2026-10-19T09:15:02Z level=ERROR msg="render dialogue" error=boom`, plain)
	if got != "09:15:02 ERROR render dialogue error=boom" {
		t.Fatalf("ColorizeLine = %q", got)
	}
	if got := ColorizeLine("free text", plain); got != "free text" {
		t.Fatalf("ColorizeLine(unparsed) = %q, want unchanged", got)
	}
	lines := ColorizeLines([]string{"a", "b"}, plain)
	if !reflect.DeepEqual(lines, []string{"a", "b"}) {
		t.Fatalf("ColorizeLines = %v", lines)
	}
}
