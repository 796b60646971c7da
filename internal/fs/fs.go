// Package fs defines the filesystem abstraction used by backup-warden and the
// recursive directory mirror built on it.
package fs

import (
	"context"
	"os"
	"time"
)

// FileInfo is the subset of stat data the mirror and the watcher rely on.
type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Mode  os.FileMode
	IsDir bool
	// Dev and Inode are zero on platforms without POSIX inodes.
	Dev   uint64
	Inode uint64
}

// FS is the set of filesystem capabilities a backup location needs.
type FS interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	CopyFile(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
}
