// Package retention prunes dated daily backups beyond the retention window.
package retention

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sort"

	"github.com/raoulx24/backup-warden/internal/location"
	"github.com/raoulx24/backup-warden/internal/logging"
)

// Engine keeps the newest keep day folders of a location.
type Engine struct {
	keep int
	log  logging.Logger
}

func New(keep int, log logging.Logger) *Engine {
	return &Engine{keep: keep, log: log}
}

// Apply removes the oldest day folders under the daily namespace of loc until
// at most keep remain, and returns the removed names. A location without a
// daily namespace has nothing to prune.
func (e *Engine) Apply(ctx context.Context, loc location.Location) ([]string, error) {
	names, err := loc.ListDirs(location.DailyDir)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", filepath.Join(loc.Root(), location.DailyDir), err)
	}

	var removed []string
	for _, name := range Expired(names, e.keep) {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := loc.Remove(filepath.Join(location.DailyDir, name)); err != nil {
			return removed, fmt.Errorf("removing backup %s: %w", name, err)
		}
		e.log.Info("removed expired backup", "location", loc.Root(), "date", name)
		removed = append(removed, name)
	}
	return removed, nil
}

// Expired returns the names to delete, oldest first. Day folders are named
// YYYY-MM-DD so lexical order is chronological.
func Expired(names []string, keep int) []string {
	if len(names) <= keep {
		return nil
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return sorted[:len(sorted)-keep]
}
