// Package files reads and writes dialogue files restricted to plain-text
// extensions.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// SuggestedName is offered as the default save-as file name.
const SuggestedName = "multilogue.txt"

// MaxSize bounds files accepted by Open.
const MaxSize = 8 << 20

var (
	// ErrCancelled signals that the user dismissed a file dialog. It is not
	// a failure and should not be reported.
	ErrCancelled = errors.New("file dialog cancelled")
	// ErrUnsupportedType is returned for paths outside the extension filter.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Extensions lists the accepted file extensions.
func Extensions() []string {
	return []string{".txt", ".md", ".text", ".plato"}
}

// Allowed reports whether path carries an accepted extension.
func Allowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range Extensions() {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Open returns the contents of path as text.
func Open(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrCancelled
	}
	if !Allowed(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Base(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("%s is larger than %s", filepath.Base(path), humanize.IBytes(MaxSize))
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not UTF-8 text", filepath.Base(path))
	}
	return string(data), nil
}

// Save writes text to path, creating parent directories.
func Save(path, text string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrCancelled
	}
	if !Allowed(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Base(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ResolveSavePath turns a save-as entry into an absolute path. Relative names
// are placed in dir, "~" is expanded, and a bare name gets ".txt".
func ResolveSavePath(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrCancelled
	}
	if strings.HasPrefix(name, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		name = filepath.Join(home, strings.TrimPrefix(name, "~"))
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	if filepath.Ext(name) == "" {
		name += ".txt"
	}
	return filepath.Abs(name)
}

// Describe formats a short status line for a saved or loaded file.
func Describe(path string, size int) string {
	return fmt.Sprintf("%s (%s)", filepath.Base(path), humanize.Bytes(uint64(size)))
}
