package watcher

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// openFsNotify registers the whole tree; fsnotify itself is not recursive.
func (w *Watcher) openFsNotify() error {
	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(nw, w.dir); err != nil {
		nw.Close()
		return err
	}
	w.notify = nw
	return nil
}

// runFsNotify translates fsnotify events until ctx is done.
func (w *Watcher) runFsNotify(ctx context.Context) error {
	defer w.notify.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.notify.Events:
			if !ok {
				return errors.New("fsnotify events channel closed")
			}

			op := translate(ev)
			w.log.Debug("event", "name", ev.Name, "op", ev.Op.String())

			if op == Create {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := addTree(w.notify, ev.Name); err != nil {
						w.log.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
					}
				}
			}

			if !w.enqueue(ctx, Event{Op: op, Path: ev.Name}) {
				return nil
			}

		case err, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			if !w.enqueue(ctx, Event{Err: err}) {
				return nil
			}
		}
	}
}

func translate(ev fsnotify.Event) Op {
	switch {
	case ev.Has(fsnotify.Create):
		return Create
	case ev.Has(fsnotify.Write):
		return Modify
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Remove
	default:
		return Other
	}
}

func addTree(nw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, iofs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return nw.Add(path)
	})
}
