package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
)

// Stats counts what one Mirror call copied.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

func (s *Stats) Add(o Stats) {
	s.Files += o.Files
	s.Dirs += o.Dirs
	s.Bytes += o.Bytes
}

// Mirror reproduces the tree rooted at src under dst, creating dst and every
// intermediate directory. Existing files in dst are overwritten, files absent
// from src are left alone.
//
// Metadata policy: file permission bits are copied, timestamps and ownership
// are not; directories are created 0755. Symbolic links are followed and a
// directory that is its own ancestor through a link is skipped. Sockets,
// devices, named pipes and dangling links are skipped. The change monitor's
// poll scan walks links the same way, so what is watched is what is copied.
//
// The first failure aborts the copy; nothing already written is rolled back.
// Cancelling ctx stops the walk between entries.
func Mirror(ctx context.Context, f FS, src, dst string) (Stats, error) {
	root, err := f.Stat(src)
	if err != nil {
		return Stats{}, fmt.Errorf("reading source %s: %w", src, err)
	}
	if !root.IsDir {
		return Stats{}, fmt.Errorf("source %s is not a directory", src)
	}

	m := &mirror{ctx: ctx, fs: f, ancestors: make(map[dirID]struct{})}
	err = m.dir(root, dst)
	return m.stats, err
}

type dirID struct{ dev, ino uint64 }

type mirror struct {
	ctx       context.Context
	fs        FS
	stats     Stats
	ancestors map[dirID]struct{}
}

func (m *mirror) dir(src FileInfo, dst string) error {
	if err := m.ctx.Err(); err != nil {
		return err
	}

	id := dirID{src.Dev, src.Inode}
	if id.ino != 0 {
		if _, loop := m.ancestors[id]; loop {
			return nil
		}
		m.ancestors[id] = struct{}{}
		defer delete(m.ancestors, id)
	}

	if err := m.fs.MkdirAll(dst); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	m.stats.Dirs++

	entries, err := m.fs.ReadDir(src.Path)
	if err != nil {
		return fmt.Errorf("listing %s: %w", src.Path, err)
	}

	for _, e := range entries {
		if err := m.ctx.Err(); err != nil {
			return err
		}

		from := filepath.Join(src.Path, e.Name())
		to := filepath.Join(dst, e.Name())

		info, err := m.fs.Stat(from)
		if errors.Is(err, iofs.ErrNotExist) {
			// Removed since the listing, or a dangling link.
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", from, err)
		}

		switch {
		case info.IsDir:
			if err := m.dir(info, to); err != nil {
				return err
			}
		case info.Mode.IsRegular():
			if err := m.fs.CopyFile(m.ctx, from, to); err != nil {
				return err
			}
			m.stats.Files++
			m.stats.Bytes += info.Size
		}
	}
	return nil
}
