package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/analyzer"
	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/display"
	"github.com/harrison/flagwise/internal/logger"
	"github.com/harrison/flagwise/internal/pattern"
	"github.com/harrison/flagwise/internal/progress"
	"github.com/harrison/flagwise/internal/store"
)

// app holds everything a storage-backed command needs. It is built per
// invocation and closed when the command returns.
type app struct {
	cfg      *config.Config
	home     string
	store    *store.Store
	gateway  *store.Gateway
	analyzer *analyzer.Analyzer
	log      logger.Sink
	out      *display.Printer
	w        io.Writer

	closers []io.Closer
}

// loadConfig honours --home before falling back to FLAGWISE_HOME.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	home, _ := cmd.Flags().GetString("home")
	if home == "" {
		return config.Load()
	}
	cfg, err := config.LoadFrom(home)
	return cfg, home, err
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, home, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{
		cfg:      cfg,
		home:     home,
		analyzer: analyzer.New(pattern.Default()),
		out:      newPrinter(cmd),
		w:        cmd.OutOrStdout(),
	}

	sinks := logger.Multi{}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		sinks = append(sinks, logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel))
	} else {
		sinks = append(sinks, logger.NewConsoleLogger(cmd.ErrOrStderr(), "error"))
	}
	if fl, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel); err == nil {
		sinks = append(sinks, fl)
		a.closers = append(a.closers, fl)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: file logging disabled: %v\n", err)
	}
	a.log = sinks

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st)
	a.gateway = store.NewGateway(st, cfg.StorageTimeout, a.log)

	a.log.LogDebug(fmt.Sprintf("command %s using %s", cmd.CommandPath(), cfg.DBPath))
	return a, nil
}

// Close releases the store and log file, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// recordProgress applies update to the stored progress, saves it and
// announces anything newly unlocked. Failures only reach the log.
func (a *app) recordProgress(ctx context.Context, update func(progress.Progress) (progress.Progress, []progress.Achievement)) {
	p, unlocked := update(progress.Load(ctx, a.gateway))
	if err := progress.Save(ctx, a.gateway, p); err != nil {
		a.log.LogWarn(fmt.Sprintf("save progress: %v", err))
	}
	a.out.Unlocked(unlocked)
}

func (a *app) writer() io.Writer { return a.w }

func (a *app) printPrompt() {
	fmt.Fprint(a.w, "> ")
}

func newPrinter(cmd *cobra.Command) *display.Printer {
	return display.New(cmd.OutOrStdout(), useColor(cmd))
}

// useColor is true only when writing to a real terminal.
func useColor(cmd *cobra.Command) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if cmd.OutOrStdout() != os.Stdout {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
