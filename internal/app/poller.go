package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// ChangeSource reports whether the watched file differs from what this
// process last read or wrote.
type ChangeSource interface {
	Changed() (bool, error)
}

// StartPoller launches a background goroutine that checks source at a fixed
// cadence and calls notify when it reports a change. Read failures back off
// exponentially. It returns immediately.
func StartPoller(ctx context.Context, source ChangeSource, notify func(), interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			changed, err := source.Changed()
			if err != nil {
				failures++
				logger.Warn("store poll failed", "error", err, "failures", failures)
			} else {
				failures = 0
				if changed {
					notify()
				}
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
