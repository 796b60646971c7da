package fs

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
)

// copyWithRetry copies one file and retries when the source was modified
// mid-copy, so a backup never keeps a torn file silently.
func copyWithRetry(ctx context.Context, f FS, src, dst string) error {
	return retry(ctx, "copy "+src, func() error {
		before, err := f.Stat(src)
		if err != nil {
			return err
		}

		if err := copyOnce(src, dst, before.Mode.Perm()); err != nil {
			return err
		}

		after, err := f.Stat(src)
		if err != nil {
			return err
		}
		if sourceChanged(before, after) {
			return errSourceChanged
		}
		return nil
	})
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if !now.MTime.Equal(orig.MTime) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}

// copyOnce overwrites dst with the bytes of src and applies perm.
func copyOnce(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openDest(dst, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile only applies perm on creation and through the umask.
	return os.Chmod(dst, perm)
}

// openDest truncates dst for writing. A read-only file left by an earlier copy
// in the same hour folder is replaced.
func openDest(dst string, perm os.FileMode) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	out, err := os.OpenFile(dst, flags, perm|0o200)
	if errors.Is(err, iofs.ErrPermission) {
		if rmErr := os.Remove(dst); rmErr == nil {
			return os.OpenFile(dst, flags, perm|0o200)
		}
	}
	return out, err
}
