package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/marauder-dl/marauder/cmd/common"
	"github.com/marauder-dl/marauder/pkg/logger"
	"github.com/marauder-dl/marauder/pkg/marauder"
)

var newConsoleLog = func() *log.Logger {
	return log.New(os.Stderr, "", DEF_LOG_FLAGS)
}

// stopReason renders why a flow stopped for humans.
func stopReason(err error) string {
	switch {
	case err == nil:
		return "finished"
	case errors.Is(err, marauder.ErrRestartExhausted):
		return "restart count exceeded"
	case errors.Is(err, marauder.ErrFlowPanicked):
		return "crashed"
	case errors.Is(err, marauder.ErrFlowAborted):
		return "aborted"
	case errors.Is(err, marauder.ErrSessionStart):
		return "browser failed"
	default:
		return "interrupted"
	}
}

func logSummary(l logger.Logger, statuses []marauder.FlowStatus) {
	for _, st := range statuses {
		if st.Reason != nil {
			l.Warning("%s Flow %s: %v", st.Label, stopReason(st.Reason), st.Reason)
		}
		l.Info("%s Triggered %d, loaded %d, not found %d, skipped %d, restarts %d, next identifier %d",
			st.Label, st.Triggered, st.Completed, st.Missed, st.Skipped, st.Restarts, st.NextID)
	}
}

func printSummary(w io.Writer, statuses []marauder.FlowStatus) {
	fmt.Fprintf(w, "|%s|%s|%s|%s|%s|%s|%s|\n",
		common.Beaut("Flow", 6),
		common.Beaut("Triggered", 11),
		common.Beaut("Loaded", 8),
		common.Beaut("Missed", 8),
		common.Beaut("Skipped", 9),
		common.Beaut("Next", 12),
		common.Beaut("Status", 24),
	)
	for _, st := range statuses {
		fmt.Fprintf(w, "|%s|%s|%s|%s|%s|%s|%s|\n",
			common.Beaut(st.Label, 6),
			common.Beaut(fmt.Sprint(st.Triggered), 11),
			common.Beaut(fmt.Sprint(st.Completed), 8),
			common.Beaut(fmt.Sprint(st.Missed), 8),
			common.Beaut(fmt.Sprint(st.Skipped), 9),
			common.Beaut(fmt.Sprint(st.NextID), 12),
			common.Beaut(stopReason(st.Reason), 24),
		)
	}
}
