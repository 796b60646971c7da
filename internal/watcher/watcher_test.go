package watcher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/raoulx24/backup-warden/internal/logging"
	"github.com/raoulx24/backup-warden/internal/snapshot"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// drain collects whatever is buffered without blocking.
func drain(w *Watcher) []Event {
	var out []Event
	for {
		select {
		case ev := <-w.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func newPolling(t *testing.T, dir string, compare bool) *Watcher {
	t.Helper()
	w := New(dir, Options{Mode: ModePoll, PollInterval: time.Hour, CompareContents: compare, Buffer: 128}, logging.Nop{})
	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return w
}

func TestPollDetectsCreateModifyRemove(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "keep.txt"), "v1")
	write(t, filepath.Join(dir, "drop.txt"), "bye")
	w := newPolling(t, dir, true)

	write(t, filepath.Join(dir, "keep.txt"), "version two")
	if err := os.Remove(filepath.Join(dir, "drop.txt")); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(dir, "sub", "new.txt"), "hi")

	if !w.poll(context.Background()) {
		t.Fatal("poll returned false")
	}

	got := map[string]Op{}
	for _, ev := range drain(w) {
		if ev.Err != nil {
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
		rel, _ := filepath.Rel(dir, ev.Path)
		got[filepath.ToSlash(rel)] = ev.Op
	}

	want := map[string]Op{
		"keep.txt":    Modify,
		"drop.txt":    Remove,
		"sub":         Create,
		"sub/new.txt": Create,
	}
	if len(got) != len(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	for path, op := range want {
		if got[path] != op {
			t.Errorf("%s: op %s, want %s", path, got[path], op)
		}
	}
}

func TestPollIgnoresMetadataNoise(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	write(t, path, "same bytes")
	w := newPolling(t, dir, true)

	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	w.poll(context.Background())

	if evs := drain(w); len(evs) != 0 {
		t.Errorf("touch without content change produced %v", evs)
	}
}

func TestPollWithoutContentCompareReportsTouch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	write(t, path, "same bytes")
	w := newPolling(t, dir, false)

	future := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	w.poll(context.Background())

	evs := drain(w)
	if len(evs) != 1 || evs[0].Op != Modify {
		t.Errorf("events = %v, want one modify", evs)
	}
}

func TestPollNoChanges(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a", "b", "c.txt"), "c")
	w := newPolling(t, dir, true)

	w.poll(context.Background())
	w.poll(context.Background())
	if evs := drain(w); len(evs) != 0 {
		t.Errorf("unchanged tree produced %v", evs)
	}
}

func TestPollReportsErrorWhenFolderVanishes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "watched")
	write(t, filepath.Join(dir, "a.txt"), "a")
	w := newPolling(t, dir, true)

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	w.poll(context.Background())

	evs := drain(w)
	if len(evs) != 1 || evs[0].Err == nil {
		t.Fatalf("events = %v, want one error event", evs)
	}
	if evs[0].Triggers() {
		t.Error("error events must not trigger a backup")
	}
}

func TestPollFollowsLinkedDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	outside := t.TempDir()
	write(t, filepath.Join(outside, "notes.txt"), "v1")
	if err := os.Symlink(outside, filepath.Join(dir, "linked")); err != nil {
		t.Fatal(err)
	}
	// A link back to the watch folder must not make the scan recurse forever.
	if err := os.Symlink(dir, filepath.Join(outside, "back")); err != nil {
		t.Fatal(err)
	}
	w := newPolling(t, dir, true)
	if _, ok := w.state["linked/notes.txt"]; !ok {
		t.Fatalf("baseline missed file behind link: %v", w.state)
	}

	write(t, filepath.Join(outside, "notes.txt"), "version two")
	w.poll(context.Background())

	evs := drain(w)
	if len(evs) != 1 || evs[0].Op != Modify || evs[0].Path != filepath.Join(dir, "linked", "notes.txt") {
		t.Errorf("events = %v, want one modify of linked/notes.txt", evs)
	}
}

func TestOpenFailsOnMissingFolder(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), Options{Mode: ModePoll}, logging.Nop{})
	if err := w.Open(); err == nil {
		t.Fatal("expected Open to fail")
	}
}

func TestRunBeforeOpen(t *testing.T) {
	w := New(t.TempDir(), Options{}, logging.Nop{})
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected Run without Open to fail")
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events not closed after Run")
	}
}

func TestRunPollingDeliversAndStops(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, Options{Mode: ModePoll, PollInterval: 20 * time.Millisecond, CompareContents: true}, logging.Nop{})
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	write(t, filepath.Join(dir, "fresh.txt"), "x")

	select {
	case ev := <-w.Events():
		if ev.Op != Create || filepath.Base(ev.Path) != "fresh.txt" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestFsNotifyDeliversCreate(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "sub", "existing.txt"), "x")

	w := New(dir, Options{Mode: ModeFsnotify}, logging.Nop{})
	if err := w.Open(); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	write(t, filepath.Join(dir, "sub", "nested.txt"), "y")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Triggers() && filepath.Base(ev.Path) == "nested.txt" {
				return
			}
		case <-deadline:
			t.Fatal("no event for file in subdirectory")
		}
	}
}

func TestDetectTypeChange(t *testing.T) {
	prev := map[string]snapshot.Artifact{"x": {Path: "x", IsDir: false, Size: 1}}
	next := map[string]snapshot.Artifact{"x": {Path: "x", IsDir: true}}

	evs := detect(prev, next, nil)
	if len(evs) != 2 || evs[0].Op != Remove || evs[1].Op != Create {
		t.Errorf("events = %v", evs)
	}
}

func TestDetectIgnoresDirectoryMtime(t *testing.T) {
	prev := map[string]snapshot.Artifact{"d": {Path: "d", IsDir: true, ModTime: time.Unix(1, 0)}}
	next := map[string]snapshot.Artifact{"d": {Path: "d", IsDir: true, ModTime: time.Unix(2, 0)}}
	if evs := detect(prev, next, nil); len(evs) != 0 {
		t.Errorf("events = %v", evs)
	}
}

func TestEventTriggers(t *testing.T) {
	for op, want := range map[Op]bool{Create: true, Modify: true, Remove: true, Other: false} {
		if got := (Event{Op: op}).Triggers(); got != want {
			t.Errorf("%s.Triggers() = %v", op, got)
		}
	}
}
