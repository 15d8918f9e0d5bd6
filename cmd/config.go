package cmd

import "log"

// DEF_LOG_FLAGS gives every line a date and a microsecond timestamp.
const DEF_LOG_FLAGS = log.LstdFlags | log.Lmicroseconds

const DESCRIPTION = `
marauder requests numbered files from a search site through a real
browser, one identifier after another, and files every download that
lands into numbered directories. Several flows can share the work, each
with its own browser.
`

const RunDescription = `The run command walks identifiers starting at --id and
triggers a browser download for each of them. Finished downloads are
moved from a per-flow temporary directory into directories named after
the identifier range they belong to.

With --flowcount N the range is shared by N browsers: flow A takes
id, id+N, id+2N..., flow B takes id+1, id+1+N... and so on.

Example:
        marauder -i 7766809 -c 100 --gc 10
					OR
        marauder run -i 7766809 -s --fc 4 --root /data/scans

`
