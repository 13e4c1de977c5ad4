//go:build !unix

package app

// notifyRunRequests is a no-op where SIGUSR1 does not exist.
func notifyRunRequests(func()) func() {
	return func() {}
}
