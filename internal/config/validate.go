package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/raoulx24/backup-warden/internal/schedule"
	"github.com/raoulx24/backup-warden/internal/watcher"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks the invariants the daemon relies on. Paths are cleaned in place.
func (c *Config) Validate() error {
	if c.WatchFolder == "" {
		return invalid("watch_folder is required")
	}
	if !filepath.IsAbs(c.WatchFolder) {
		return invalid("watch_folder %q must be absolute", c.WatchFolder)
	}
	c.WatchFolder = filepath.Clean(c.WatchFolder)

	if len(c.BackupLocations) == 0 {
		return invalid("at least one backup location is required")
	}
	seen := make(map[string]struct{}, len(c.BackupLocations))
	for i, loc := range c.BackupLocations {
		if loc == "" || !filepath.IsAbs(loc) {
			return invalid("backup location %q must be an absolute path", loc)
		}
		loc = filepath.Clean(loc)
		if _, dup := seen[loc]; dup {
			return invalid("backup location %q listed twice", loc)
		}
		if within(c.WatchFolder, loc) {
			return invalid("backup location %q is inside watch_folder", loc)
		}
		seen[loc] = struct{}{}
		c.BackupLocations[i] = loc
	}

	if c.RetentionDays <= 0 {
		return invalid("retention_days must be a positive integer, got %d", c.RetentionDays)
	}
	if c.WaitBudget < 0 {
		return invalid("wait_budget must be positive")
	}

	switch c.Watch.Mode {
	case watcher.ModePoll, watcher.ModeFsnotify, watcher.ModeAuto:
	default:
		return invalid("unknown watch mode %q", c.Watch.Mode)
	}
	if c.Watch.PollInterval < 0 {
		return invalid("watch.poll_interval must be positive")
	}
	if c.Watch.Buffer < 0 {
		return invalid("watch.buffer must be positive")
	}

	if _, err := schedule.Parse(c.Snapshot.Schedule); err != nil {
		return invalid("snapshot.schedule: %v", err)
	}
	return nil
}

// within reports whether path equals root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
