// Package snapshot describes copies of the watch folder: the records of what
// was written to a location, and the per-file view of the watched tree.
package snapshot

import (
	"time"

	"github.com/raoulx24/backup-warden/internal/fs"
)

// Kind tells daily backups from monthly snapshots.
type Kind string

const (
	Daily   Kind = "daily"
	Monthly Kind = "monthly"
)

// Snapshot represents one copy of the watch folder written to a location.
type Snapshot struct {
	Kind      Kind
	Location  string
	Path      string
	Timestamp time.Time
	Stats     fs.Stats
	// Skipped is set when a monthly snapshot for the date already existed.
	Skipped bool
}
