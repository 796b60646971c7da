package fs

import (
	"context"
	"os"
)

// renameWithRetry moves a staged snapshot directory into its final name.
func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retry(ctx, "rename "+oldPath, func() error {
		return os.Rename(oldPath, newPath)
	})
}
