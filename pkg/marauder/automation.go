package marauder

import (
	"context"
	"time"
)

// SessionOptions configures a browser session opened by an Automation.
type SessionOptions struct {
	// DownloadDir is where the browser must deposit downloaded files.
	// It is an absolute path on the local filesystem.
	DownloadDir string
}

// Automation opens browser sessions. Implementations wrap a concrete driver.
type Automation interface {
	// Open starts a new browser session. Errors returned here are treated as
	// session start failures.
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}

// Element is an opaque handle to a located page element. Only the Session
// that returned it can interpret it.
type Element any

// Session is one live browser session.
//
// WaitActionable and SetAttribute report ErrElementNotReady (wrapped) when
// the element is missing or does not become actionable; Activate reports
// ErrActivationBlocked when the click is intercepted. Errors of any other
// kind are classified by the caller.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitActionable(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	SetAttribute(ctx context.Context, el Element, name, value string) error
	Activate(ctx context.Context, el Element) error
	// Close shuts the session down. It must be safe to call more than once.
	Close() error
}
