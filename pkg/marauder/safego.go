package marauder

import (
	"runtime/debug"

	"github.com/marauder-dl/marauder/pkg/logger"
)

// safeRun runs fn with panic recovery on the calling goroutine.
// If l is non-nil, panics are logged with stack traces.
// If onPanic is non-nil, it's called with the recovered value.
func safeRun(l logger.Logger, context string, onPanic func(r interface{}), fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if l != nil {
				l.Error("PANIC [%s]: %v\n%s", context, r, debug.Stack())
			}
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}
