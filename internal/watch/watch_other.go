//go:build !linux

package watch

// File is unavailable on this platform.
func File(string, func()) (func(), error) {
	return nil, ErrUnsupported
}
