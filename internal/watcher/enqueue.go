package watcher

import "context"

// enqueue hands an event to the consumer. It blocks while the buffer is full
// so events queue up behind a running backup instead of being dropped.
func (w *Watcher) enqueue(ctx context.Context, ev Event) bool {
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
