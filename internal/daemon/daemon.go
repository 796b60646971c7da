// Package daemon runs one watch-and-backup pipeline: the change monitor, the
// control loop and the producers, under a single-instance lock.
package daemon

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/backup-warden/internal/config"
	"github.com/raoulx24/backup-warden/internal/fs"
	"github.com/raoulx24/backup-warden/internal/location"
	"github.com/raoulx24/backup-warden/internal/logging"
	"github.com/raoulx24/backup-warden/internal/preflight"
	"github.com/raoulx24/backup-warden/internal/retention"
	"github.com/raoulx24/backup-warden/internal/schedule"
	"github.com/raoulx24/backup-warden/internal/watcher"
	"github.com/raoulx24/backup-warden/internal/worker"
)

var (
	// ErrLocked means another daemon holds the lock for this watch folder.
	ErrLocked = errors.New("another backup-warden instance is already running")
	// ErrMonitor wraps failures to start watching the folder.
	ErrMonitor = errors.New("change monitor setup failed")
)

// Daemon is one pipeline built from a validated config. Nothing in it is
// global, so several can share a process.
type Daemon struct {
	cfg *config.Config
	log logging.Logger

	lockPath string
	lock     *flock.Flock

	watcher *watcher.Watcher
	worker  *worker.Worker
	loop    *Loop
}

// New wires a daemon. filesystem may be nil for the OS filesystem.
func New(cfg *config.Config, log logging.Logger, filesystem fs.FS) (*Daemon, error) {
	if cfg == nil || log == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	sched, err := schedule.Parse(cfg.Snapshot.Schedule)
	if err != nil {
		return nil, fmt.Errorf("snapshot schedule: %w", err)
	}

	lockPath := cfg.LockFile
	if lockPath == "" {
		lockPath = DefaultLockPath(cfg.WatchFolder)
	}

	w := watcher.New(cfg.WatchFolder, watcher.Options{
		Mode:            cfg.Watch.Mode,
		PollInterval:    cfg.Watch.PollInterval,
		CompareContents: cfg.Watch.ContentsCompared(),
		Buffer:          cfg.Watch.Buffer,
	}, log)

	wk := worker.New(
		cfg.WatchFolder,
		location.FromRoots(cfg.BackupLocations, filesystem),
		retention.New(cfg.RetentionDays, log),
		log,
	)

	return &Daemon{
		cfg:      cfg,
		log:      log,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		watcher:  w,
		worker:   wk,
		loop: NewLoop(LoopConfig{
			Events:     w.Events(),
			Producer:   wk,
			Schedule:   sched,
			WaitBudget: cfg.WaitBudget,
			Log:        log,
		}),
	}, nil
}

// DefaultLockPath derives a per-watch-folder lock file in the temp directory.
func DefaultLockPath(watchFolder string) string {
	sum := blake3.Sum256([]byte(watchFolder))
	return filepath.Join(os.TempDir(), "backup-warden-"+hex.EncodeToString(sum[:8])+".lock")
}

// LockPath is the lock file guarding this pipeline.
func (d *Daemon) LockPath() string { return d.lockPath }

// Loop exposes the control loop, mostly for status reporting.
func (d *Daemon) Loop() *Loop { return d.loop }

// Run holds the lock, starts watching and drives the control loop until ctx
// is cancelled. Setup failures are returned wrapped in ErrLocked or ErrMonitor.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrLocked, d.lockPath)
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.log.Warn("failed to release lock", "lock", d.lockPath, "error", err)
		}
	}()

	if err := preflight.CheckSource(d.cfg.WatchFolder); err != nil {
		return fmt.Errorf("%w: %w", ErrMonitor, err)
	}
	d.checkLocations()

	if err := d.watcher.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrMonitor, err)
	}

	d.log.Info("backup-warden started",
		"watch_folder", d.cfg.WatchFolder,
		"locations", len(d.cfg.BackupLocations),
		"retention_days", d.cfg.RetentionDays,
		"lock", d.lockPath,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.watcher.Run(gctx)
	})
	g.Go(func() error {
		return d.loop.Run(gctx)
	})

	err = g.Wait()
	d.log.Info("backup-warden stopped")
	return err
}

// checkLocations warns about unusable locations; they are retried every cycle.
func (d *Daemon) checkLocations() {
	for _, root := range d.cfg.BackupLocations {
		r := preflight.CheckLocation(root)
		switch {
		case r.Err != nil:
			d.log.Warn("backup location unavailable", "location", root, "error", r.Err)
		case r.Warning != "":
			d.log.Warn("backup location suspicious", "location", root, "reason", r.Warning)
		default:
			d.log.Info("backup location ready", "location", root, "free", humanize.Bytes(r.FreeBytes))
		}
	}
}
