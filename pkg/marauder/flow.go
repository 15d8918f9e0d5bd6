package marauder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/marauder-dl/marauder/pkg/logger"
	"github.com/spf13/afero"
)

// FlowState is the lifecycle state of a Flow.
type FlowState int

const (
	FlowStarting FlowState = iota
	FlowRunning
	FlowDraining
	FlowStopped
)

func (s FlowState) String() string {
	switch s {
	case FlowStarting:
		return "starting"
	case FlowRunning:
		return "running"
	case FlowDraining:
		return "draining"
	case FlowStopped:
		return "stopped"
	default:
		return fmt.Sprintf("FlowState(%d)", int(s))
	}
}

// FlowConfig describes the identifiers one flow covers and where their
// files go.
type FlowConfig struct {
	StartID int64
	// Step between consecutive identifiers; values below 1 mean 1.
	Step int64
	// MaxCount bounds identifiers to [StartID, StartID+MaxCount). Zero means
	// unbounded.
	MaxCount       int64
	GroupSize      int64
	GroupAlignment bool
	SkipExisting   bool
	Label          string
}

// FlowStatus is the terminal report of a flow. A nil Reason means the
// identifier range was exhausted.
type FlowStatus struct {
	Label     string
	Reason    error
	Triggered int
	Completed int
	Missed    int
	Skipped   int
	Restarts  int
	// NextID is the identifier the flow would have attempted next.
	NextID int64
}

// FlowOpts holds the collaborators of a flow.
type FlowOpts struct {
	Automation Automation
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Root is the output directory holding staging and destination
	// directories. The browser writes into it, so it should be absolute.
	Root string
	// Profile defaults to DefaultProfile when its URL is empty.
	Profile  Profile
	Logger   logger.Logger
	Clock    Clock
	Handlers *Handlers
}

// Flow walks an arithmetic identifier sequence with one browser session,
// restarting the session on trigger failures, and files settled downloads.
// A Flow runs once.
type Flow struct {
	cfg      FlowConfig
	fs       afero.Fs
	profile  Profile
	layout   Layout
	l        logger.Logger
	handlers *Handlers

	session *SessionHandle
	trigger *DownloadTrigger
	queue   *PendingQueue

	mu      sync.Mutex
	state   FlowState
	started bool
	status  FlowStatus
}

// NewFlow validates opts and builds a flow in the FlowStarting state.
func NewFlow(cfg FlowConfig, opts *FlowOpts) (*Flow, error) {
	if opts == nil || opts.Automation == nil {
		return nil, errors.New("flow requires an automation driver")
	}
	if cfg.StartID < 1 {
		return nil, fmt.Errorf("incorrect start identifier %d", cfg.StartID)
	}
	if cfg.MaxCount < 0 {
		return nil, fmt.Errorf("incorrect count value %d", cfg.MaxCount)
	}
	if cfg.GroupSize < 0 {
		return nil, fmt.Errorf("incorrect group count value %d", cfg.GroupSize)
	}
	if cfg.Step < 1 {
		cfg.Step = 1
	}
	profile := opts.Profile
	if profile.URL == "" {
		profile = DefaultProfile()
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	handlers := &Handlers{}
	if opts.Handlers != nil {
		*handlers = *opts.Handlers
	}
	handlers.setDefault()
	l := opts.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}

	f := &Flow{
		cfg:      cfg,
		fs:       fs,
		profile:  profile,
		l:        l,
		handlers: handlers,
		layout: Layout{
			Root:           opts.Root,
			BaseID:         cfg.StartID,
			GroupSize:      cfg.GroupSize,
			GroupAlignment: cfg.GroupAlignment,
		},
		status: FlowStatus{Label: cfg.Label, NextID: cfg.StartID},
	}
	staging := f.layout.StagingDir(cfg.Label)
	f.session = NewSessionHandle(opts.Automation, fs, staging, profile, l)
	f.trigger = NewDownloadTrigger(f.session, profile)
	f.queue = NewPendingQueue(fs, staging, f.layout.Dir, &QueueOpts{
		Extensions:  profile.Extensions,
		SettleDelay: profile.SettleDelay,
		Clock:       opts.Clock,
		Logger:      l,
		Label:       cfg.Label,
		Handlers:    handlers,
	})
	return f, nil
}

func (f *Flow) Config() FlowConfig {
	return f.cfg
}

func (f *Flow) Layout() Layout {
	return f.layout
}

func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s FlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Run drives the flow to FlowStopped and returns its status. The flow stops
// when its range is exhausted, when the session cannot be (re)started, or
// when ctx is cancelled or the driver panics. In every case the session is
// closed, pending downloads are settled and the staging directory is removed.
func (f *Flow) Run(ctx context.Context) FlowStatus {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return FlowStatus{Label: f.cfg.Label, Reason: ErrFlowStopped}
	}
	f.started = true
	f.mu.Unlock()

	safeRun(f.l, "flow "+f.cfg.Label, func(r interface{}) {
		f.status.Reason = fmt.Errorf("%w: %v", ErrFlowPanicked, r)
	}, func() {
		f.status.Reason = f.run(ctx)
	})
	f.drain(ctx)

	f.status.Completed = f.queue.Completed()
	f.status.Missed = f.queue.Missed()
	f.setState(FlowStopped)
	f.handlers.StopHandler(f.status)
	return f.status
}

func (f *Flow) run(ctx context.Context) error {
	if err := f.session.Start(ctx); err != nil {
		f.l.Error("Error while start browser session: %v", err)
		return fmt.Errorf("%w: %w", ErrFlowAborted, err)
	}
	f.setState(FlowRunning)

	label := f.cfg.Label
	id := f.cfg.StartID
	for f.inRange(id) {
		f.status.NextID = id
		if err := ctx.Err(); err != nil {
			f.l.Warning("%d Cancelled before trigger", id)
			return err
		}
		if f.cfg.SkipExisting && f.layout.Exists(f.fs, id, f.profile.Extensions) {
			f.l.Info("%d File already exists - skip loading", id)
			f.status.Skipped++
			f.handlers.SkipHandler(label, id)
		} else if err := f.trigger.Fire(ctx, id); err != nil {
			if errors.Is(err, ErrActivationBlocked) {
				f.l.Error("%d Error while proxy element clicking: %v", id, err)
			} else {
				f.l.Error("%d Error while proxy element search: %v", id, err)
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if err := f.session.Restart(ctx); err != nil {
				return err
			}
			f.status.Restarts++
			f.handlers.RestartHandler(label, f.session.RestartCount())
			continue
		} else {
			f.queue.Push(id)
			f.session.ResetRestarts()
			f.status.Triggered++
			f.handlers.TriggerHandler(label, id)
		}
		f.queue.Reconcile()
		id += f.cfg.Step
	}
	f.status.NextID = id
	return nil
}

func (f *Flow) inRange(id int64) bool {
	return f.cfg.MaxCount == 0 || id < f.cfg.StartID+f.cfg.MaxCount
}

func (f *Flow) drain(ctx context.Context) {
	f.setState(FlowDraining)
	f.session.Terminate()
	f.queue.DrainAll(ctx)
	if err := f.fs.RemoveAll(f.session.StagingDir()); err != nil {
		f.l.Error("Error while remove temporary folder: %v", err)
	}
}
