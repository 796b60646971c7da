// Package fsprobe decides whether kernel change notifications can be trusted
// for a folder. Network shares and some FUSE mounts accept a watch but never
// deliver events, so the only reliable test is to cause one and wait for it.
package fsprobe

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWait is how long Probe waits for the test event.
const DefaultWait = 200 * time.Millisecond

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool
	Reason            string // set when unsupported
}

func unsupported(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Probe creates a scratch directory inside dir, watches it, creates a file in
// it and waits for the notification. The scratch directory is always removed.
// A zero wait means DefaultWait.
func Probe(dir string, wait time.Duration) Result {
	if wait <= 0 {
		wait = DefaultWait
	}

	info, err := os.Stat(dir)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !info.IsDir() {
		return unsupported("%s is not a directory", dir)
	}

	scratch, err := os.MkdirTemp(dir, ".backup-warden-probe-")
	if err != nil {
		return unsupported("cannot create scratch directory: %v", err)
	}
	defer os.RemoveAll(scratch)

	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer nw.Close()

	if err := nw.Add(scratch); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	f, err := os.CreateTemp(scratch, "probe-")
	if err != nil {
		return unsupported("cannot create probe file: %v", err)
	}
	f.Close()

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	for {
		select {
		case ev, ok := <-nw.Events:
			if !ok {
				return unsupported("event stream closed")
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				return Result{FsnotifySupported: true}
			}
		case err, ok := <-nw.Errors:
			if ok && err != nil {
				return unsupported("watch error: %v", err)
			}
		case <-deadline.C:
			return unsupported("no event within %s", wait)
		}
	}
}
