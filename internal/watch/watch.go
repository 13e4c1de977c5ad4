// Package watch notifies when a file is replaced or rewritten.
package watch

import "errors"

// ErrUnsupported is returned where file notifications are unavailable.
// Callers fall back to polling.
var ErrUnsupported = errors.New("file watching not supported on this platform")
