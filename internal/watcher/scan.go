package watcher

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/raoulx24/backup-warden/internal/fs"
	"github.com/raoulx24/backup-warden/internal/snapshot"
)

// scan records every directory and regular file below root keyed by
// slash-separated relative path. Symbolic links are followed the way the
// backup mirror follows them, and a directory that is its own ancestor
// through a link is not descended again. Entries that vanish mid-walk and
// dangling links are skipped.
func scan(f fs.FS, root string) (map[string]snapshot.Artifact, error) {
	info, err := f.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	s := &scanner{
		fs:        f,
		tree:      make(map[string]snapshot.Artifact),
		ancestors: make(map[[2]uint64]struct{}),
	}
	if err := s.dir(info, ""); err != nil {
		return nil, err
	}
	return s.tree, nil
}

type scanner struct {
	fs        fs.FS
	tree      map[string]snapshot.Artifact
	ancestors map[[2]uint64]struct{}
}

func (s *scanner) dir(info fs.FileInfo, rel string) error {
	id := [2]uint64{info.Dev, info.Inode}
	if id[1] != 0 {
		if _, loop := s.ancestors[id]; loop {
			return nil
		}
		s.ancestors[id] = struct{}{}
		defer delete(s.ancestors, id)
	}

	entries, err := s.fs.ReadDir(info.Path)
	if err != nil {
		if rel != "" && errors.Is(err, iofs.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		child, err := s.fs.Stat(filepath.Join(info.Path, e.Name()))
		if errors.Is(err, iofs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		childRel := path.Join(rel, e.Name())
		switch {
		case child.IsDir:
			s.tree[childRel] = snapshot.FromStat(childRel, child)
			if err := s.dir(child, childRel); err != nil {
				return err
			}
		case child.Mode.IsRegular():
			s.tree[childRel] = snapshot.FromStat(childRel, child)
		}
	}
	return nil
}

// digest hashes a file with BLAKE3.
func digest(path string) ([32]byte, error) {
	var sum [32]byte

	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
