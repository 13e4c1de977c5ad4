//go:build linux

package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFile_NotifiesOnRenameAndWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "store.toml")

	events := make(chan struct{}, 8)
	stop, err := File(target, func() { events <- struct{}{} })
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	t.Cleanup(stop)

	tmp := filepath.Join(dir, ".store-1.toml")
	if err := os.WriteFile(tmp, []byte("multilogue = 'a'\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	waitEvent(t, events)

	if err := os.WriteFile(target, []byte("multilogue = 'b'\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitEvent(t, events)
}

func TestFile_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	events := make(chan struct{}, 8)
	stop, err := File(filepath.Join(dir, "store.toml"), func() { events <- struct{}{} })
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	t.Cleanup(stop)

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	select {
	case <-events:
		t.Fatalf("unexpected notification for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFile_StopIsIdempotent(t *testing.T) {
	stop, err := File(filepath.Join(t.TempDir(), "store.toml"), func() {})
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	stop()
	stop()
}

func TestMatches(t *testing.T) {
	if matches(nil, "x") {
		t.Fatalf("matches(nil) = true")
	}
}

func waitEvent(t *testing.T, events <-chan struct{}) {
	t.Helper()
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatalf("no change notification within 2s")
	}
}
