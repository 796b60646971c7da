package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/raoulx24/backup-warden/internal/config"
	"github.com/raoulx24/backup-warden/internal/daemon"
	"github.com/raoulx24/backup-warden/internal/logging"
)

// Process exit codes.
const (
	exitOK      = 0
	exitConfig  = 1
	exitMonitor = 2
	exitLocked  = 3
	exitOther   = 4
)

// configError marks failures that happen before the daemon exists.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func main() {
	err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "backup-warden: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func run(args []string) error {
	var configPath string
	flagSet := pflag.NewFlagSet("backup-warden", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML or JSON config file")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return configError{err}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return configError{fmt.Errorf("failed to load config: %w", err)}
	}

	logg, err := logging.NewStderr(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return configError{err}
	}

	d, err := daemon.New(cfg, logg, nil)
	if err != nil {
		return configError{err}
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logg.Error("backup-warden failed", "error", err)
		return err
	}
	logg.Info("exit complete")
	return nil
}

func exitCode(err error) int {
	var cfgErr configError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr):
		return exitConfig
	case errors.Is(err, daemon.ErrMonitor):
		return exitMonitor
	case errors.Is(err, daemon.ErrLocked):
		return exitLocked
	default:
		return exitOther
	}
}
