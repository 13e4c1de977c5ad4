package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/multilogue/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "multilogue: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "multilogue: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (app.Options, error) {
	var opts app.Options
	var logLevel string

	flagSet := pflag.NewFlagSet("multilogue", pflag.ContinueOnError)
	flagSet.SetOutput(os.Stderr)
	flagSet.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/multilogue/config.toml)")
	flagSet.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/multilogue/prefs.toml)")
	flagSet.StringVar(&opts.StorePath, "store", "", "dialogue store file, overrides store_path")
	flagSet.StringVar(&opts.Settings, "settings", "", "session settings query string, e.g. temperature=0.7&max_output_tokens=256")
	flagSet.StringVar(&logLevel, "log-level", "info", "log file level: debug, info, warn, error")
	flagSet.IntVar(&opts.PollEvery, "poll", 0, "store poll interval in seconds when file watching is unavailable")
	flagSet.BoolVar(&opts.NoAltScreen, "no-alt-screen", false, "draw in the main terminal buffer")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: multilogue [flags]\n\nView and edit a dialogue; send it to the machine with ctrl+r or SIGUSR1.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opts, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.PollEvery < 0 {
		return opts, fmt.Errorf("--poll must not be negative")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return opts, fmt.Errorf("--log-level: %w", err)
	}
	opts.LogLevel = level
	return opts, nil
}
