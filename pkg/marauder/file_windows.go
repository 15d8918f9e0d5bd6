//go:build windows

package marauder

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// isCrossDeviceError reports whether err is ERROR_NOT_SAME_DEVICE, returned
// when moving a file between drives.
func isCrossDeviceError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == windows.ERROR_NOT_SAME_DEVICE
	}
	return false
}
