// Package location models a backup destination root and its on-disk layout:
//
//	<root>/Past 30 Days/<YYYY-MM-DD>/@<hh AM|PM>/...
//	<root>/Monthly Snapshots/<YYYY-MM-DD>/...
package location

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"time"

	"github.com/raoulx24/backup-warden/internal/fs"
)

// Namespaces under every location root.
const (
	DailyDir    = "Past 30 Days"
	SnapshotDir = "Monthly Snapshots"
)

// DateLabel names a day folder.
func DateLabel(t time.Time) string {
	return t.Format(time.DateOnly)
}

// HourLabel names a backup folder inside a day folder, e.g. "@02 PM".
func HourLabel(t time.Time) string {
	return "@" + t.Format("03 PM")
}

// Location is a backup destination. Every rel argument is a path relative to
// the location root.
type Location interface {
	Root() string
	// Mirror copies the tree at src into rel, creating it as needed.
	Mirror(ctx context.Context, src, rel string) (fs.Stats, error)
	// ListDirs returns the names of the immediate subdirectories of rel.
	ListDirs(rel string) ([]string, error)
	// Remove deletes rel recursively.
	Remove(rel string) error
	Exists(rel string) (bool, error)
	Rename(ctx context.Context, from, to string) error
}

// Local is a Location on a mounted filesystem.
type Local struct {
	root string
	fs   fs.FS
}

// NewLocal returns a location rooted at root. A nil filesystem means the OS.
func NewLocal(root string, filesystem fs.FS) *Local {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Local{root: root, fs: filesystem}
}

func (l *Local) Root() string { return l.root }

func (l *Local) path(rel string) string {
	return filepath.Join(l.root, rel)
}

func (l *Local) Mirror(ctx context.Context, src, rel string) (fs.Stats, error) {
	return fs.Mirror(ctx, l.fs, src, l.path(rel))
}

func (l *Local) ListDirs(rel string) ([]string, error) {
	entries, err := l.fs.ReadDir(l.path(rel))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *Local) Remove(rel string) error {
	return l.fs.RemoveAll(l.path(rel))
}

func (l *Local) Exists(rel string) (bool, error) {
	_, err := l.fs.Stat(l.path(rel))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, iofs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (l *Local) Rename(ctx context.Context, from, to string) error {
	return l.fs.Rename(ctx, l.path(from), l.path(to))
}

// FromRoots builds one Local per root, in order.
func FromRoots(roots []string, filesystem fs.FS) []Location {
	locs := make([]Location, 0, len(roots))
	for _, r := range roots {
		locs = append(locs, NewLocal(r, filesystem))
	}
	return locs
}
