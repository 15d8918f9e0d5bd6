package marauder

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/marauder-dl/marauder/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// RunParams is a validated request to cover an identifier range with
// several flows.
type RunParams struct {
	BaseID int64
	Skip   bool
	// TotalCount bounds each flow to TotalCount identifiers past its own
	// start; zero means unbounded.
	TotalCount int64
	// GroupCount is the destination bucket size; zero disables grouping.
	GroupCount int64
	FlowCount  int
}

// Plan splits p into one FlowConfig per flow. Flow i starts at BaseID+i and
// steps by FlowCount, so the flows interleave over the range without
// sharing an identifier.
func Plan(p RunParams) []FlowConfig {
	n := p.FlowCount
	if n < 1 {
		n = 1
	}
	cfgs := make([]FlowConfig, n)
	for i := range cfgs {
		cfgs[i] = FlowConfig{
			StartID:        p.BaseID + int64(i),
			Step:           int64(n),
			MaxCount:       p.TotalCount,
			GroupSize:      p.GroupCount,
			GroupAlignment: true,
			SkipExisting:   p.Skip,
			Label:          FlowLabel(i),
		}
	}
	return cfgs
}

// FlowLabel names the i-th flow: A..Z, then AA, AB, ...
func FlowLabel(i int) string {
	var b []byte
	for ; i >= 0; i = i/26 - 1 {
		b = append([]byte{byte('A' + i%26)}, b...)
	}
	return string(b)
}

// Orchestrator runs the flows of a RunParams concurrently. Flows share only
// the logger; each gets its own session, staging directory and queue.
type Orchestrator struct {
	opts FlowOpts
	l    logger.Logger
}

// NewOrchestrator creates an orchestrator whose flows use opts. Each flow
// logs through opts.Logger prefixed with its label.
func NewOrchestrator(opts *FlowOpts) *Orchestrator {
	o := &Orchestrator{}
	if opts != nil {
		o.opts = *opts
	}
	o.l = o.opts.Logger
	if o.l == nil {
		o.l = logger.NewNopLogger()
	}
	return o
}

// Launch starts every flow and returns without waiting. The returned
// channel receives one status per flow and is closed after the last one;
// callers that do not care may ignore it.
func (o *Orchestrator) Launch(ctx context.Context, p RunParams) <-chan FlowStatus {
	cfgs := Plan(p)
	out := make(chan FlowStatus, len(cfgs))
	runID := uuid.NewString()
	o.l.Info("Run %s: %d flow(s) from identifier %d", runID, len(cfgs), p.BaseID)

	var g errgroup.Group
	for _, cfg := range cfgs {
		cfg := cfg
		g.Go(func() error {
			out <- o.runFlow(ctx, runID, cfg)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}

// Run launches every flow and waits for all of them. Statuses are returned
// in flow order.
func (o *Orchestrator) Run(ctx context.Context, p RunParams) []FlowStatus {
	order := make(map[string]int)
	for i, cfg := range Plan(p) {
		order[cfg.Label] = i
	}
	statuses := make([]FlowStatus, 0, len(order))
	for st := range o.Launch(ctx, p) {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return order[statuses[i].Label] < order[statuses[j].Label]
	})
	return statuses
}

func (o *Orchestrator) runFlow(ctx context.Context, runID string, cfg FlowConfig) (status FlowStatus) {
	fl := logger.WithPrefix(o.l, cfg.Label)
	status = FlowStatus{Label: cfg.Label, NextID: cfg.StartID}

	// A flow that fails to build or panics never reports its stop, so the
	// orchestrator does it on its behalf.
	handlers := Handlers{}
	if o.opts.Handlers != nil {
		handlers = *o.opts.Handlers
	}
	handlers.setDefault()
	onStop := handlers.StopHandler
	stopped := false
	handlers.StopHandler = func(st FlowStatus) {
		stopped = true
		onStop(st)
	}
	defer func() {
		if !stopped {
			onStop(status)
		}
	}()

	safeRun(fl, "flow "+cfg.Label+" run "+runID, func(r interface{}) {
		status.Reason = fmt.Errorf("%w: %v", ErrFlowPanicked, r)
	}, func() {
		opts := o.opts
		opts.Logger = fl
		opts.Handlers = &handlers
		f, err := NewFlow(cfg, &opts)
		if err != nil {
			fl.Error("Incorrect flow configuration, execution aborted: %v", err)
			status.Reason = fmt.Errorf("%w: %w", ErrFlowAborted, err)
			return
		}
		status = f.Run(ctx)
	})
	if status.Reason != nil {
		fl.Warning("Flow stopped: %v", status.Reason)
	} else {
		fl.Info("Flow finished")
	}
	return status
}
