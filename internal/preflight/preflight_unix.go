//go:build !windows

package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// validateMountPoint flags a location on the root filesystem outside the
// home directory, which usually means an external drive is not mounted and
// backups would land on the system disk.
func validateMountPoint(path string) error {
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(path, home) {
		return nil
	}

	var root, target unix.Stat_t
	if err := unix.Stat("/", &root); err != nil {
		return fmt.Errorf("failed to stat root: %w", err)
	}
	if err := unix.Stat(path, &target); err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if target.Dev == root.Dev && path != "/" {
		return fmt.Errorf("path %s is on the root filesystem; ensure the backup drive is mounted", path)
	}
	return nil
}

func freeSpace(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil
}
