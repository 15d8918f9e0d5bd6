package cmd

import (
	"io"

	"github.com/marauder-dl/marauder/cmd/common"
	"github.com/marauder-dl/marauder/pkg/marauder"
	"github.com/vbauerster/mpb/v8"
)

// flowProgress draws one bar per flow. The bar map is filled before any
// flow starts and only read afterwards; mpb bars are safe for concurrent
// use.
type flowProgress struct {
	p    *mpb.Progress
	bars map[string]*mpb.Bar
}

func newFlowProgress(out io.Writer, cfgs []marauder.FlowConfig) *flowProgress {
	fp := &flowProgress{
		p:    mpb.New(mpb.WithOutput(out), mpb.WithWidth(48)),
		bars: make(map[string]*mpb.Bar, len(cfgs)),
	}
	for _, cfg := range cfgs {
		fp.bars[cfg.Label] = common.InitFlowBar(fp.p, cfg.Label, flowTotal(cfg))
	}
	return fp
}

// flowTotal is the number of identifiers cfg covers, zero if unbounded.
func flowTotal(cfg marauder.FlowConfig) int64 {
	if cfg.MaxCount <= 0 {
		return 0
	}
	step := max(cfg.Step, 1)
	return (cfg.MaxCount + step - 1) / step
}

func (fp *flowProgress) handlers() *marauder.Handlers {
	step := func(label string, _ int64) {
		if b, ok := fp.bars[label]; ok {
			b.Increment()
		}
	}
	return &marauder.Handlers{
		TriggerHandler: step,
		SkipHandler:    step,
		StopHandler: func(st marauder.FlowStatus) {
			if b, ok := fp.bars[st.Label]; ok {
				// complete at the current count, whatever the total was
				b.SetTotal(-1, true)
			}
		},
	}
}

// Wait completes the bars of flows that are gone and waits for rendering to
// finish. Call it once every flow has stopped.
func (fp *flowProgress) Wait() {
	for _, b := range fp.bars {
		if !b.Completed() {
			b.SetTotal(-1, true)
		}
	}
	fp.p.Wait()
}
