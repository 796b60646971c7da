//go:build unix

package fs

import (
	"os"
	"syscall"
)

// fileID extracts device and inode numbers from syscall.Stat_t. The pair
// identifies a directory when the mirror follows symbolic links.
func fileID(info os.FileInfo) (dev, ino uint64) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return uint64(st.Dev), st.Ino
}
