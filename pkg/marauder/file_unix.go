//go:build !windows

package marauder

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// isCrossDeviceError reports whether err is EXDEV, returned when renaming
// across filesystems or mount points.
func isCrossDeviceError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == unix.EXDEV
	}
	return false
}
