// Package preflight checks the watch folder and backup locations before the
// daemon starts. Checks only read state, they never create anything.
package preflight

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// CheckSource validates that the watch folder exists and is a directory.
func CheckSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("watch folder %s does not exist", path)
		}
		return fmt.Errorf("cannot stat watch folder %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch folder %s is not a directory", path)
	}
	return nil
}

// Report is what CheckLocation found out about one backup location.
type Report struct {
	Path string
	// Err means the location is currently unusable.
	Err error
	// Warning flags a usable but suspicious location.
	Warning string
	// FreeBytes is zero when unknown.
	FreeBytes uint64
}

// CheckLocation inspects a backup location root. A root that does not exist
// yet is fine as long as its deepest existing ancestor is a directory; the
// backup will create it.
func CheckLocation(path string) Report {
	r := Report{Path: path}

	probe, err := deepestExisting(path)
	if err != nil {
		r.Err = err
		return r
	}

	info, err := os.Stat(probe)
	if err != nil {
		r.Err = fmt.Errorf("cannot access %s: %w", probe, err)
		return r
	}
	if !info.IsDir() {
		r.Err = fmt.Errorf("%s exists but is not a directory", probe)
		return r
	}

	if err := validateMountPoint(probe); err != nil {
		r.Warning = err.Error()
	}

	if free, err := freeSpace(probe); err == nil {
		r.FreeBytes = free
	}
	return r
}

// deepestExisting walks up from path to the first ancestor that exists.
func deepestExisting(path string) (string, error) {
	cur := path
	for {
		_, err := os.Stat(cur)
		if err == nil {
			return cur, nil
		}
		if !errors.Is(err, iofs.ErrNotExist) {
			return "", fmt.Errorf("cannot access %s: %w", cur, err)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("no existing ancestor for %s", path)
		}
		cur = parent
	}
}
