// Package watcher monitors the watch folder and emits change events.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raoulx24/backup-warden/internal/fs"
	"github.com/raoulx24/backup-warden/internal/fsprobe"
	"github.com/raoulx24/backup-warden/internal/logging"
	"github.com/raoulx24/backup-warden/internal/snapshot"
)

// Op classifies a change.
type Op int

const (
	Other Op = iota
	Create
	Modify
	Remove
)

func (o Op) String() string {
	switch o {
	case Create:
		return "create"
	case Modify:
		return "modify"
	case Remove:
		return "remove"
	default:
		return "other"
	}
}

// Event is one change notification, or a monitor error when Err is set.
type Event struct {
	Op   Op
	Path string
	Err  error
}

// Triggers reports whether the event should start a backup.
func (e Event) Triggers() bool {
	return e.Err == nil && (e.Op == Create || e.Op == Modify || e.Op == Remove)
}

// Watch strategies.
const (
	ModePoll     = "poll"
	ModeFsnotify = "fsnotify"
	ModeAuto     = "auto"
)

// Options tune the watcher.
type Options struct {
	Mode            string
	PollInterval    time.Duration
	CompareContents bool
	Buffer          int
}

// Watcher observes a directory tree. Open must succeed before Run.
type Watcher struct {
	mu sync.Mutex

	dir  string
	opts Options
	log  logging.Logger

	mode   string
	events chan Event

	// poll strategy
	fsys  fs.FS
	state map[string]snapshot.Artifact

	// fsnotify strategy
	notify *fsnotify.Watcher
}

// New creates a watcher for dir.
func New(dir string, opts Options, log logging.Logger) *Watcher {
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Hour
	}
	return &Watcher{
		dir:    dir,
		fsys:   fs.New(),
		opts:   opts,
		log:    log,
		events: make(chan Event, opts.Buffer),
	}
}

// Events is the single-consumer stream of changes. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Mode is the strategy chosen by Open.
func (w *Watcher) Mode() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Open checks the folder and prepares the configured strategy. Errors here
// mean the folder cannot be watched at all.
func (w *Watcher) Open() error {
	st, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("watching %s: not a directory", w.dir)
	}

	mode := w.opts.Mode
	if mode == "" || mode == ModeAuto {
		res := fsprobe.Probe(w.dir, 0)
		if res.FsnotifySupported {
			mode = ModeFsnotify
		} else {
			w.log.Warn("fsnotify unavailable, polling instead", "reason", res.Reason)
			mode = ModePoll
		}
	}

	switch mode {
	case ModePoll:
		err = w.openPolling()
	case ModeFsnotify:
		err = w.openFsNotify()
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.mode = mode
	w.mu.Unlock()
	w.log.Info("watching folder", "dir", w.dir, "mode", mode)
	return nil
}

// Run delivers events until ctx is cancelled, then closes Events.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	switch w.Mode() {
	case ModePoll:
		w.runPolling(ctx)
		return nil
	case ModeFsnotify:
		return w.runFsNotify(ctx)
	default:
		return errors.New("watcher: Run called before Open")
	}
}
