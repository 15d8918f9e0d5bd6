//go:build !windows

package cmd

import (
	"os"
	"syscall"
)

// shutdownSignals stop every flow. Pending downloads are checked at once,
// so ones still inside their settle window are reported as not found.
var shutdownSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}
