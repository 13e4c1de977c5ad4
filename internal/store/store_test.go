package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "store.toml"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return s
}

func TestStore_EnsureCreatesDefaultOnce(t *testing.T) {
	s := openTemp(t)

	got, err := s.Ensure(DialogueKey, "")
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if got != "" {
		t.Fatalf("Ensure = %q, want empty default", got)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("store file not created: %v", err)
	}

	if err := s.Set(DialogueKey, "Hello"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, err = s.Ensure(DialogueKey, "")
	if err != nil {
		t.Fatalf("Ensure returned error: %v", err)
	}
	if got != "Hello" {
		t.Fatalf("Ensure = %q, want existing value Hello", got)
	}
}

func TestStore_SetPreservesTextVerbatim(t *testing.T) {
	s := openTemp(t)
	text := "  Socrates: \"What is justice?\"\n\n\tGlaucon: '''a\\b'''  \n"

	if err := s.Set(DialogueKey, text); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, ok, err := s.Get(DialogueKey)
	if err != nil || !ok {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
	if got != text {
		t.Fatalf("Get = %q, want %q", got, text)
	}

	reopened, err := Open(s.Path())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	got, _, err = reopened.Get(DialogueKey)
	if err != nil || got != text {
		t.Fatalf("reopened Get = %q, %v, want %q", got, err, text)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	s := openTemp(t)
	got, ok, err := s.Get("absent")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok || got != "" {
		t.Fatalf("Get = %q, %v, want empty and absent", got, ok)
	}
}

func TestStore_ChangedIgnoresOwnWrites(t *testing.T) {
	s := openTemp(t)
	if err := s.Set(DialogueKey, "mine"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	changed, err := s.Changed()
	if err != nil {
		t.Fatalf("Changed returned error: %v", err)
	}
	if changed {
		t.Fatalf("Changed = true after own write, want false")
	}

	other, err := Open(s.Path())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := other.Set(DialogueKey, "theirs"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	changed, err = s.Changed()
	if err != nil {
		t.Fatalf("Changed returned error: %v", err)
	}
	if !changed {
		t.Fatalf("Changed = false after foreign write, want true")
	}

	if _, _, err := s.Get(DialogueKey); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if changed, _ := s.Changed(); changed {
		t.Fatalf("Changed = true after re-read, want false")
	}
}

func TestStore_ParseErrorRecordedInSnapshot(t *testing.T) {
	s := openTemp(t)
	if err := os.WriteFile(s.Path(), []byte("multilogue = ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	before := time.Now()
	if _, _, err := s.Get(DialogueKey); err == nil || !strings.Contains(err.Error(), "parse store") {
		t.Fatalf("Get error = %v, want parse store error", err)
	}
	snap := s.Snapshot()
	if snap.LastError == nil {
		t.Fatalf("Snapshot LastError = nil, want parse error")
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.Path != s.Path() {
		t.Fatalf("Snapshot Path = %q, want %q", snap.Path, s.Path())
	}
}

func TestOpen_EmptyPathFails(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("Open(\"\") returned nil error")
	}
}
