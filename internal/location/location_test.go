package location

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLabels(t *testing.T) {
	tests := []struct {
		at   time.Time
		date string
		hour string
	}{
		{time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC), "2024-03-05", "@02 PM"},
		{time.Date(2024, 3, 5, 2, 59, 0, 0, time.UTC), "2024-03-05", "@02 AM"},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "2024-12-31", "@12 AM"},
		{time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), "2024-12-31", "@12 PM"},
	}
	for _, tt := range tests {
		if got := DateLabel(tt.at); got != tt.date {
			t.Errorf("DateLabel(%s) = %q, want %q", tt.at, got, tt.date)
		}
		if got := HourLabel(tt.at); got != tt.hour {
			t.Errorf("HourLabel(%s) = %q, want %q", tt.at, got, tt.hour)
		}
	}
}

func TestLocalListDirsIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"2024-01-02", "2024-01-01"} {
		if err := os.MkdirAll(filepath.Join(root, DailyDir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, DailyDir, "notes.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLocal(root, nil)
	got, err := l.ListDirs(DailyDir)
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}
	if want := []string{"2024-01-01", "2024-01-02"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListDirs = %v, want %v", got, want)
	}
}

func TestLocalExistsRemoveRename(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(root, nil)

	ok, err := l.Exists(DailyDir)
	if err != nil || ok {
		t.Fatalf("Exists on empty root = %v, %v", ok, err)
	}

	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "f"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Mirror(context.Background(), src, filepath.Join(SnapshotDir, ".tmp-2024-01-31")); err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	if err := l.Rename(context.Background(), filepath.Join(SnapshotDir, ".tmp-2024-01-31"), filepath.Join(SnapshotDir, "2024-01-31")); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if ok, _ := l.Exists(filepath.Join(SnapshotDir, "2024-01-31", "f")); !ok {
		t.Error("renamed snapshot missing")
	}

	if err := l.Remove(SnapshotDir); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := l.Exists(SnapshotDir); ok {
		t.Error("Remove left the tree behind")
	}
}

func TestFromRoots(t *testing.T) {
	locs := FromRoots([]string{"/a", "/b"}, nil)
	if len(locs) != 2 || locs[0].Root() != "/a" || locs[1].Root() != "/b" {
		t.Errorf("FromRoots = %v", locs)
	}
}
