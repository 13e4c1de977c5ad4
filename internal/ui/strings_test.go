package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"a long status line", 10, "a long ..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle_KeepsExtension(t *testing.T) {
	got := truncateMiddle("/home/socrates/.local/share/multilogue/store.toml", 24)
	if len([]rune(got)) != 24 {
		t.Fatalf("truncateMiddle length = %d (%q), want 24", len([]rune(got)), got)
	}
	if got[len(got)-5:] != ".toml" {
		t.Fatalf("truncateMiddle = %q, want .toml kept", got)
	}
	if got := truncateMiddle("/tmp/a.txt", 40); got != "/tmp/a.txt" {
		t.Fatalf("truncateMiddle(short) = %q", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("render dialogue\npanic: boom"); got != "render dialogue …" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine(" single "); got != "single" {
		t.Fatalf("firstLine = %q", got)
	}
}
