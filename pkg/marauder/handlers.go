package marauder

type (
	// TriggerHandlerFunc is called after a download was fired for id.
	TriggerHandlerFunc func(label string, id int64)
	// SkipHandlerFunc is called when id is skipped because its file exists.
	SkipHandlerFunc func(label string, id int64)
	// CompleteHandlerFunc is called when the file for id was moved to path.
	CompleteHandlerFunc func(label string, id int64, path string)
	// MissHandlerFunc is called when no file for id showed up in staging.
	MissHandlerFunc func(label string, id int64)
	// RestartHandlerFunc is called before the attempt-th session restart.
	RestartHandlerFunc func(label string, attempt int)
	// StopHandlerFunc is called once with the terminal status of a flow.
	StopHandlerFunc func(status FlowStatus)
)

// Handlers observe a flow's progress. Every field is optional. Handlers of
// one flow are called from that flow's goroutine only; handlers shared by
// several flows must be safe for concurrent use.
type Handlers struct {
	TriggerHandler  TriggerHandlerFunc
	SkipHandler     SkipHandlerFunc
	CompleteHandler CompleteHandlerFunc
	MissHandler     MissHandlerFunc
	RestartHandler  RestartHandlerFunc
	StopHandler     StopHandlerFunc
}

func (h *Handlers) setDefault() {
	if h.TriggerHandler == nil {
		h.TriggerHandler = func(string, int64) {}
	}
	if h.SkipHandler == nil {
		h.SkipHandler = func(string, int64) {}
	}
	if h.CompleteHandler == nil {
		h.CompleteHandler = func(string, int64, string) {}
	}
	if h.MissHandler == nil {
		h.MissHandler = func(string, int64) {}
	}
	if h.RestartHandler == nil {
		h.RestartHandler = func(string, int) {}
	}
	if h.StopHandler == nil {
		h.StopHandler = func(FlowStatus) {}
	}
}
