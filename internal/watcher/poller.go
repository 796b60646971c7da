package watcher

import (
	"context"
	"path/filepath"
	"time"
)

// openPolling takes the baseline scan.
func (w *Watcher) openPolling() error {
	tree, err := scan(w.fsys, w.dir)
	if err != nil {
		return err
	}
	if hash := w.hash(); hash != nil {
		for rel, a := range tree {
			if !a.IsDir {
				tree[rel] = withDigest(a, hash)
			}
		}
	}
	w.state = tree
	return nil
}

// runPolling rescans on a fixed interval.
func (w *Watcher) runPolling(ctx context.Context) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.poll(ctx) {
				return
			}
		}
	}
}

// poll runs one scan and emits its events. It returns false once ctx is done.
func (w *Watcher) poll(ctx context.Context) bool {
	next, err := scan(w.fsys, w.dir)
	if err != nil {
		return w.enqueue(ctx, Event{Err: err})
	}

	events := detect(w.state, next, w.hash())
	w.state = next

	for _, ev := range events {
		ev.Path = filepath.Join(w.dir, filepath.FromSlash(ev.Path))
		w.log.Debug("change detected", "op", ev.Op.String(), "path", ev.Path)
		if !w.enqueue(ctx, ev) {
			return false
		}
	}
	return true
}

func (w *Watcher) hash() hashFunc {
	if !w.opts.CompareContents {
		return nil
	}
	return hasher(w.dir)
}
