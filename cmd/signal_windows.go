//go:build windows

package cmd

import "os"

// shutdownSignals stop every flow. On Windows only os.Interrupt is
// delivered. Pending downloads are checked at once, without waiting out
// their settle window.
var shutdownSignals = []os.Signal{os.Interrupt}
