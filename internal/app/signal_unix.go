//go:build unix

package app

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyRunRequests calls run for every SIGUSR1 until the returned stop
// function is called.
func notifyRunRequests(run func()) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-signals:
				run()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
	}
}
