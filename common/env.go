// Package common provides shared constants used across the marauder
// command-line interface and its packages.
package common

// Environment variable names for configuration.
const (
	// ProfileEnv points at a YAML profile overriding the built-in target site.
	ProfileEnv = "MARAUDER_PROFILE"

	// RootEnv is the output directory holding staging and destination
	// directories.
	RootEnv = "MARAUDER_ROOT"

	// ChromePathEnv overrides the browser executable.
	ChromePathEnv = "MARAUDER_CHROME_PATH"

	// LogFileEnv overrides the log file path.
	LogFileEnv = "MARAUDER_LOG_FILE"
)
