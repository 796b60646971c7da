// Package worker produces daily backups and monthly snapshots of the watch
// folder across every backup location.
package worker

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/raoulx24/backup-warden/internal/fs"
	"github.com/raoulx24/backup-warden/internal/location"
	"github.com/raoulx24/backup-warden/internal/logging"
	"github.com/raoulx24/backup-warden/internal/snapshot"
)

// Worker copies the watch folder into its locations. Locations are handled
// one after another and a failure at one never stops the others.
type Worker struct {
	src       string
	locations []location.Location
	retention Retention
	log       logging.Logger
}

// New creates a worker for one watch folder.
func New(watchFolder string, locs []location.Location, r Retention, log logging.Logger) *Worker {
	return &Worker{
		src:       watchFolder,
		locations: locs,
		retention: r,
		log:       log,
	}
}

// Handle runs the cycle described by job.
func (w *Worker) Handle(ctx context.Context, job Job) error {
	var err error
	switch job.Kind {
	case snapshot.Daily:
		_, err = w.backup(ctx, job)
	case snapshot.Monthly:
		_, err = w.snapshot(ctx, job)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	return err
}

// HasBackups reports whether any location already holds a daily namespace.
func (w *Worker) HasBackups() bool {
	for _, loc := range w.locations {
		_, err := loc.ListDirs(location.DailyDir)
		if err == nil {
			return true
		}
		if !errors.Is(err, iofs.ErrNotExist) {
			w.log.Warn("cannot inspect backup location", "location", loc.Root(), "error", err)
		}
	}
	return false
}

// Backup copies the watch folder into <location>/Past 30 Days/<date>/<hour>
// for every location and prunes each location after a successful copy.
func (w *Worker) Backup(ctx context.Context, now time.Time) ([]snapshot.Snapshot, error) {
	return w.backup(ctx, NewJob(snapshot.Daily, now))
}

// Snapshot copies the watch folder into <location>/Monthly Snapshots/<date>.
// Locations that already hold a snapshot for the date are skipped.
func (w *Worker) Snapshot(ctx context.Context, date time.Time) ([]snapshot.Snapshot, error) {
	return w.snapshot(ctx, NewJob(snapshot.Monthly, date))
}

func (w *Worker) backup(ctx context.Context, job Job) ([]snapshot.Snapshot, error) {
	rel := filepath.Join(location.DailyDir, location.DateLabel(job.At), location.HourLabel(job.At))
	w.log.Info("backup started", "cycle", job.ID, "target", rel, "locations", len(w.locations))

	var (
		done []snapshot.Snapshot
		errs []error
	)
	for _, loc := range w.locations {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		stats, err := loc.Mirror(ctx, w.src, rel)
		if err != nil {
			w.log.Warn("backup failed", "cycle", job.ID, "location", loc.Root(), "error", err)
			errs = append(errs, fmt.Errorf("backup to %s: %w", loc.Root(), err))
			continue
		}
		done = append(done, snapshot.Snapshot{
			Kind:      snapshot.Daily,
			Location:  loc.Root(),
			Path:      filepath.Join(loc.Root(), rel),
			Timestamp: job.At,
			Stats:     stats,
		})
		w.log.Info("backup written",
			"cycle", job.ID,
			"location", loc.Root(),
			"files", stats.Files,
			"size", humanize.Bytes(uint64(stats.Bytes)),
		)

		if _, err := w.retention.Apply(ctx, loc); err != nil {
			w.log.Warn("retention failed", "cycle", job.ID, "location", loc.Root(), "error", err)
			errs = append(errs, fmt.Errorf("pruning %s: %w", loc.Root(), err))
		}
	}

	return done, errors.Join(errs...)
}

func (w *Worker) snapshot(ctx context.Context, job Job) ([]snapshot.Snapshot, error) {
	label := location.DateLabel(job.At)
	final := filepath.Join(location.SnapshotDir, label)
	staging := filepath.Join(location.SnapshotDir, ".tmp-"+label)
	w.log.Info("monthly snapshot started", "cycle", job.ID, "date", label)

	var (
		done []snapshot.Snapshot
		errs []error
	)
	for _, loc := range w.locations {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		s := snapshot.Snapshot{
			Kind:      snapshot.Monthly,
			Location:  loc.Root(),
			Path:      filepath.Join(loc.Root(), final),
			Timestamp: job.At,
		}

		exists, err := loc.Exists(final)
		if err != nil {
			w.log.Warn("snapshot failed", "cycle", job.ID, "location", loc.Root(), "error", err)
			errs = append(errs, fmt.Errorf("snapshot to %s: %w", loc.Root(), err))
			continue
		}
		if exists {
			w.log.Info("snapshot already present", "cycle", job.ID, "location", loc.Root(), "date", label)
			s.Skipped = true
			done = append(done, s)
			continue
		}

		stats, err := w.stage(ctx, loc, staging, final)
		if err != nil {
			w.log.Warn("snapshot failed", "cycle", job.ID, "location", loc.Root(), "error", err)
			errs = append(errs, fmt.Errorf("snapshot to %s: %w", loc.Root(), err))
			continue
		}
		s.Stats = stats
		done = append(done, s)
		w.log.Info("snapshot written",
			"cycle", job.ID,
			"location", loc.Root(),
			"files", stats.Files,
			"size", humanize.Bytes(uint64(stats.Bytes)),
		)
	}

	return done, errors.Join(errs...)
}

// stage mirrors into a staging folder and renames it into place, so a
// snapshot directory only ever appears complete.
func (w *Worker) stage(ctx context.Context, loc location.Location, staging, final string) (fs.Stats, error) {
	if err := loc.Remove(staging); err != nil {
		return fs.Stats{}, fmt.Errorf("clearing stale staging folder: %w", err)
	}

	stats, err := loc.Mirror(ctx, w.src, staging)
	if err != nil {
		_ = loc.Remove(staging)
		return fs.Stats{}, err
	}

	if err := loc.Rename(ctx, staging, final); err != nil {
		_ = loc.Remove(staging)
		return fs.Stats{}, fmt.Errorf("finalizing snapshot: %w", err)
	}
	return stats, nil
}
