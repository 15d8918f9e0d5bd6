package marauder

import "errors"

var (
	// ErrSessionStart is returned when a browser session cannot be opened or
	// the proxy element never becomes actionable after navigation.
	ErrSessionStart = errors.New("browser session could not be started")
	// ErrElementNotReady is returned when an element does not become
	// actionable within the load timeout, or disappears.
	ErrElementNotReady = errors.New("element is not ready")
	// ErrActivationBlocked is returned when a click on an element is
	// intercepted by another element.
	ErrActivationBlocked = errors.New("element activation was intercepted")
	// ErrRestartExhausted is returned when the session restart budget is used up.
	ErrRestartExhausted = errors.New("restart count exceeded")

	ErrFlowAborted  = errors.New("flow aborted")
	ErrFlowStopped  = errors.New("flow already ran")
	ErrFlowPanicked = errors.New("flow panicked")

	ErrInvalidProfile = errors.New("invalid site profile")
)
