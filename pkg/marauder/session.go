package marauder

import (
	"context"
	"fmt"

	"github.com/marauder-dl/marauder/pkg/logger"
	"github.com/spf13/afero"
)

// SessionState is the lifecycle state of a SessionHandle.
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionReady
	SessionDegraded
	SessionTerminated
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionReady:
		return "ready"
	case SessionDegraded:
		return "degraded"
	case SessionTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// SessionHandle owns one browser session bound to one staging directory and
// counts consecutive restarts against the profile's restart budget.
//
// A SessionHandle is used by a single flow goroutine and is not safe for
// concurrent use.
type SessionHandle struct {
	automation Automation
	fs         afero.Fs
	stagingDir string
	profile    Profile
	l          logger.Logger

	state    SessionState
	restarts int
	sess     Session
	proxy    Element
}

// NewSessionHandle creates a handle in the SessionUninitialized state.
func NewSessionHandle(a Automation, fs afero.Fs, stagingDir string, profile Profile, l logger.Logger) *SessionHandle {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &SessionHandle{
		automation: a,
		fs:         fs,
		stagingDir: stagingDir,
		profile:    profile,
		l:          l,
	}
}

// Start opens a session and waits for the proxy element. On success the
// handle is SessionReady and the restart counter is zero. Failures wrap
// ErrSessionStart.
func (h *SessionHandle) Start(ctx context.Context) error {
	if err := h.open(ctx); err != nil {
		return err
	}
	h.restarts = 0
	return nil
}

// Restart closes the current session and opens a new one, counting the
// attempt. Once the counter has reached the restart budget it fails with
// ErrRestartExhausted without opening anything. A failed reopen is returned
// wrapping ErrSessionStart.
func (h *SessionHandle) Restart(ctx context.Context) error {
	h.l.Warning("Restart marauding")
	h.closeSession()
	if h.restarts >= h.profile.RestartBudget {
		h.state = SessionTerminated
		h.l.Error("Error while restart - restart count exceed")
		return fmt.Errorf("%w: %d of %d", ErrRestartExhausted, h.restarts, h.profile.RestartBudget)
	}
	h.restarts++
	if err := h.open(ctx); err != nil {
		h.l.Error("Error while start browser session: %v", err)
		return err
	}
	return nil
}

// Terminate closes the session if open. Safe to call multiple times.
func (h *SessionHandle) Terminate() {
	if h.state == SessionTerminated && h.sess == nil {
		return
	}
	if h.closeSession() {
		h.l.Info("Close browser session")
	}
	h.state = SessionTerminated
}

func (h *SessionHandle) open(ctx context.Context) error {
	h.closeSession()
	h.l.Info("Start new browser session")
	if err := h.fs.MkdirAll(h.stagingDir, 0755); err != nil {
		h.state = SessionDegraded
		return fmt.Errorf("%w: create staging directory: %w", ErrSessionStart, err)
	}
	sess, err := h.automation.Open(ctx, SessionOptions{DownloadDir: h.stagingDir})
	if err != nil {
		h.state = SessionDegraded
		return fmt.Errorf("%w: %w", ErrSessionStart, err)
	}
	if err := sess.Navigate(ctx, h.profile.URL); err != nil {
		sess.Close()
		h.state = SessionDegraded
		return fmt.Errorf("%w: navigate: %w", ErrSessionStart, err)
	}
	proxy, err := sess.WaitActionable(ctx, h.profile.ProxySelector, h.profile.LoadTimeout)
	if err != nil {
		sess.Close()
		h.state = SessionDegraded
		return fmt.Errorf("%w: proxy element: %w", ErrSessionStart, err)
	}
	h.sess = sess
	h.proxy = proxy
	h.state = SessionReady
	return nil
}

// closeSession reports whether there was a session to close.
func (h *SessionHandle) closeSession() bool {
	if h.sess == nil {
		return false
	}
	if err := h.sess.Close(); err != nil {
		h.l.Warning("Error while close browser session: %v", err)
	}
	h.sess = nil
	h.proxy = nil
	return true
}

// MarkDegraded records that the live session failed a trigger.
func (h *SessionHandle) MarkDegraded() {
	if h.state == SessionReady {
		h.state = SessionDegraded
	}
}

// ResetRestarts zeroes the consecutive restart counter.
func (h *SessionHandle) ResetRestarts() {
	h.restarts = 0
}

func (h *SessionHandle) RestartCount() int {
	return h.restarts
}

func (h *SessionHandle) State() SessionState {
	return h.state
}

func (h *SessionHandle) StagingDir() string {
	return h.stagingDir
}

// Session returns the live session and its proxy element, or nils when no
// session is open.
func (h *SessionHandle) Session() (Session, Element) {
	return h.sess, h.proxy
}
