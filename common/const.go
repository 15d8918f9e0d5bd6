package common

const (
	// DEF_LOG_FILE is created in the working directory and truncated on
	// every run.
	DEF_LOG_FILE = "marauder.log"
	// DEF_ROOT is the default output directory.
	DEF_ROOT = "."
	// DEF_FLOW_COUNT is used when no flow count is given.
	DEF_FLOW_COUNT = 1
)
