//go:build windows

package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// validateMountPoint verifies that the drive or share root of path exists.
func validateMountPoint(path string) error {
	volume := filepath.VolumeName(path)
	if volume == "" {
		return nil
	}
	if !strings.HasSuffix(volume, string(filepath.Separator)) {
		volume += string(filepath.Separator)
	}
	if _, err := os.Stat(volume); os.IsNotExist(err) {
		return fmt.Errorf("volume root %s does not exist; ensure the drive is connected", volume)
	}
	return nil
}

func freeSpace(path string) (uint64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	var avail, total, free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &avail, &total, &free); err != nil {
		return 0, err
	}
	return avail, nil
}
