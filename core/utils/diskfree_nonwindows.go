//go:build !windows

package utils

import (
	"golang.org/x/sys/unix"
)

// GetDiskAvailableBytes - how much space the filesystem holding path has
// left. The renderer checks its staging directory with this before starting,
// full resolution plate staging can run to tens of GB.
func GetDiskAvailableBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}

	// Available blocks * size per block = available space in bytes
	return stat.Bavail * uint64(stat.Bsize), nil
}
