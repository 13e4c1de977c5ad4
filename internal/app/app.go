package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/multilogue/internal/config"
	"github.com/five82/multilogue/internal/display"
	"github.com/five82/multilogue/internal/machine"
	"github.com/five82/multilogue/internal/prefs"
	"github.com/five82/multilogue/internal/render"
	"github.com/five82/multilogue/internal/session"
	"github.com/five82/multilogue/internal/settings"
	"github.com/five82/multilogue/internal/store"
	"github.com/five82/multilogue/internal/ui"
	"github.com/five82/multilogue/internal/watch"
)

// Options configure the multilogue application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/multilogue/prefs.toml
	StorePath  string // overrides store_path from the config
	Settings   string // overrides settings from the config
	LogLevel   slog.Level
	PollEvery  int // seconds; zero uses the config value
	// NoAltScreen keeps the TUI in the main terminal buffer.
	NoAltScreen bool
}

// Run boots the multilogue TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.StorePath != "" {
		path, err := config.ExpandPath(opts.StorePath)
		if err != nil {
			return fmt.Errorf("store path: %w", err)
		}
		cfg.StorePath = path
	}
	if opts.Settings != "" {
		cfg.Settings = opts.Settings
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	logs, err := newLogging(cfg.LogPath(), opts.LogLevel)
	if err != nil {
		return err
	}
	defer logs.Close()
	logger := logs.Logger

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("preferences unreadable, using defaults", "error", err)
	}

	s := settings.Parse(cfg.Settings)
	logSettings(logger, s)

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	machineCfg, err := config.LoadMachine(cfg.MachineConfigPath)
	if err != nil {
		logger.Warn("machine config unusable, using defaults", "path", cfg.MachineConfigPath, "error", err)
	}
	machineOpts := machine.Options{
		TokenHost:    machineCfg.TokenHost,
		TokenPath:    machineCfg.Token,
		InsecureTLS:  machineCfg.InsecureTLS,
		Endpoint:     machineCfg.Endpoint,
		Model:        machineCfg.Model,
		Speaker:      machineCfg.Speaker,
		SystemPrompt: machineCfg.SystemPrompt,
	}
	client, err := machine.NewClient(machineOpts)
	if err != nil {
		return fmt.Errorf("init machine client: %w", err)
	}
	logger.Info("machine configured", "token_url", client.TokenURL(), "model", client.Model())

	bridge := ui.NewBridge()
	runner := machine.NewRunner(client, st, machineOpts, bridge.StorageChanged, logger)
	flow := session.New(s, client, runner, bridge, logger)

	plato := render.New(0, render.Palette{})
	reconciler := display.New(st, plato, logger)

	stopWatch := watchStore(ctx, st, bridge.StorageChanged, cfg.PollInterval, logger)
	defer stopWatch()

	uiOpts := ui.Options{
		Context:    ctx,
		Reconciler: reconciler,
		Renderer:   plato,
		Flow:       flow,
		Snapshot:   st.Snapshot,
		PrefsPath:  opts.PrefsPath,
		Prefs:      userPrefs,
		LogPath:    cfg.LogPath(),
		Logger:     logger,
	}
	program := ui.NewProgram(uiOpts, !opts.NoAltScreen)
	bridge.SetSender(program)
	logs.TUI.SetSender(program)
	defer bridge.SetSender(nil)
	defer logs.TUI.SetSender(nil)

	stopSignals := notifyRunRequests(bridge.RequestRun)
	defer stopSignals()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-done:
		}
	}()

	logger.Info("multilogue started", "store", st.Path())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info("multilogue stopped")
	return nil
}

// watchStore reports changes made to the store file by other processes.
// inotify is preferred; the poller takes over where it is unavailable.
func watchStore(ctx context.Context, st *store.Store, notify func(), interval time.Duration, logger *slog.Logger) func() {
	onChange := func() {
		changed, err := st.Changed()
		if err != nil {
			logger.Warn("store check failed", "error", err)
			return
		}
		if changed {
			notify()
		}
	}

	stop, err := watch.File(st.Path(), onChange)
	if err == nil {
		logger.Debug("watching store", "path", st.Path())
		return stop
	}
	if !errors.Is(err, watch.ErrUnsupported) {
		logger.Warn("store watch failed, polling instead", "error", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	StartPoller(pollCtx, st, notify, interval, logger)
	logger.Debug("polling store", "path", st.Path(), "interval", interval)
	return cancel
}

// logSettings records the parsed settings once. The token is never logged.
func logSettings(logger *slog.Logger, s *settings.Settings) {
	keys := s.Keys()
	attrs := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		if key == "token" {
			continue
		}
		v, _ := s.Get(key)
		attrs = append(attrs, key, v.String())
	}
	logger.Info("settings", attrs...)
}
