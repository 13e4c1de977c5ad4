// Package logtail reads the tail of the application log and colors it for
// the log overlay.
//
// # Reading Log Files
//
// Read extracts the last maxLines by reading the file backwards in chunks,
// so opening the overlay costs the same however large the log grows:
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//	if err != nil {
//		return err
//	}
//
// # Colorizing
//
// Lines written by slog's text handler ("time=… level=… msg=… k=v") are
// parsed with Parse and re-rendered by ColorizeLine as a compact
// "HH:MM:SS LEVEL message attrs" line using the caller's lipgloss styles.
// Lines that do not parse (panics, stray output) pass through untouched.
package logtail
