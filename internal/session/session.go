package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/five82/multilogue/internal/settings"
)

// User-facing alert texts.
const (
	AlertMissingPopup = "Error: Token input dialog is missing. Cannot proceed without a token if fetch fails."
	AlertEmptyToken   = "Enter an API token."
	alertRunFailed    = "LLM interaction failed: "
)

var (
	// ErrTokenUnavailable is returned when no token is present and the fetch
	// failed. The user has been asked for one; the triggering request is dropped.
	ErrTokenUnavailable = errors.New("token unavailable")
	// ErrNoTokenPopup is returned by Affordances when the token prompt cannot be shown.
	ErrNoTokenPopup = errors.New("token popup unavailable")
	// ErrEmptyToken rejects a blank popup submission.
	ErrEmptyToken = errors.New("token is empty")
)

// TokenFetcher retrieves a token without user interaction.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (string, error)
}

// MachineRunner performs the machine interaction once a token is present.
type MachineRunner interface {
	RunMachine(ctx context.Context, token string, s *settings.Settings) error
}

// Affordances are the user-facing hooks the flow needs.
type Affordances interface {
	ShowTokenPopup() error
	Alert(msg string)
}

// Flow gates machine runs on a session token, fetching it on first use and
// falling back to the token popup when the fetch fails.
type Flow struct {
	settings *settings.Settings
	fetcher  TokenFetcher
	runner   MachineRunner
	ui       Affordances
	logger   *slog.Logger

	group singleflight.Group
}

// New builds a Flow. ui may be nil, in which case a failed fetch cannot fall
// back to the popup and is only logged.
func New(s *settings.Settings, fetcher TokenFetcher, runner MachineRunner, ui Affordances, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{settings: s, fetcher: fetcher, runner: runner, ui: ui, logger: logger}
}

// EnsureToken returns the session token, fetching it when absent. Concurrent
// callers share one in-flight fetch.
func (f *Flow) EnsureToken(ctx context.Context) (string, error) {
	if token := f.settings.Token(); token != "" {
		return token, nil
	}
	v, err, _ := f.group.Do("token", func() (any, error) {
		if token := f.settings.Token(); token != "" {
			return token, nil
		}
		f.logger.Info("token not found, fetching")
		token, err := f.fetcher.FetchToken(ctx)
		if err == nil && token == "" {
			err = errors.New("token endpoint returned an empty body")
		}
		if err != nil {
			f.logger.Warn("token fetch failed", "error", err)
			f.requestPopup()
			return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
		}
		f.settings.SetToken(token)
		f.logger.Info("token fetched")
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (f *Flow) requestPopup() {
	var err error = ErrNoTokenPopup
	if f.ui != nil {
		err = f.ui.ShowTokenPopup()
	}
	if err == nil {
		return
	}
	f.logger.Error("token popup unavailable", "error", err)
	if f.ui != nil {
		f.ui.Alert(AlertMissingPopup)
	}
}

// SubmitPopupToken stores the trimmed value and hides the popup. A blank
// value is rejected with an alert and the popup stays open. The pending
// action is not re-triggered.
func (f *Flow) SubmitPopupToken(p *Popup, value string) error {
	token := strings.TrimSpace(value)
	if token == "" {
		if f.ui != nil {
			f.ui.Alert(AlertEmptyToken)
		}
		return ErrEmptyToken
	}
	f.settings.SetToken(token)
	p.Hide()
	f.logger.Info("token set from popup")
	return nil
}

// CancelPopup hides the popup without touching the token.
func (f *Flow) CancelPopup(p *Popup) {
	if !p.Visible() {
		return
	}
	p.Hide()
	f.logger.Info("token popup cancelled")
}

// RunInteractive runs the machine for a user gesture. Failures are alerted.
func (f *Flow) RunInteractive(ctx context.Context) error {
	return f.run(ctx, func(err error) {
		f.logger.Error("machine interaction failed", "trigger", "interactive", "error", err)
		if f.ui != nil {
			f.ui.Alert(alertRunFailed + err.Error())
		}
	})
}

// RunCommand runs the machine for an external command. Failures are logged.
func (f *Flow) RunCommand(ctx context.Context) error {
	f.logger.Info("run machine command received")
	return f.run(ctx, func(err error) {
		f.logger.Error("machine interaction failed", "trigger", "command", "error", err)
	})
}

func (f *Flow) run(ctx context.Context, onFailure func(error)) error {
	token, err := f.EnsureToken(ctx)
	if err != nil {
		return err
	}
	f.logger.Info("token available, running machine")
	if err := f.runner.RunMachine(ctx, token, f.settings); err != nil {
		onFailure(err)
		return fmt.Errorf("run machine: %w", err)
	}
	return nil
}
