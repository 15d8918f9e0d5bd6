// Package marauder drives numbered downloads through a browser session and
// files the results into a grouped directory tree.
//
// A Flow owns one browser session (SessionHandle), fires downloads for an
// arithmetic sequence of identifiers (DownloadTrigger), and moves files that
// have settled in its staging directory into their destination directory
// (PendingQueue). The Orchestrator partitions an identifier range over
// several flows that run concurrently and never share an identifier.
//
// The browser itself is reached only through the Automation interface; see
// internal/cdpdriver for the Chrome implementation.
package marauder
