package marauder

import (
	"context"
	"path/filepath"
	"time"

	"github.com/marauder-dl/marauder/pkg/logger"
	"github.com/spf13/afero"
)

// PendingDownload is a fired download waiting to show up in staging.
type PendingDownload struct {
	ID          int64
	TriggeredAt time.Time
}

// DestinationFunc returns the directory a settled file for id is moved to.
type DestinationFunc func(id int64) string

// QueueOpts configures a PendingQueue. Zero values fall back to defaults.
type QueueOpts struct {
	// Extensions are probed in order; the first existing file wins.
	Extensions []string
	// SettleDelay is how long a download is given before it is checked.
	SettleDelay time.Duration
	Clock       Clock
	Logger      logger.Logger
	// Label is passed to the handlers.
	Label    string
	Handlers *Handlers
}

// PendingQueue holds fired downloads in trigger order and moves the ones
// that have settled from the staging directory to their destination.
//
// Entries are checked exactly once: a download that has not appeared when
// its settle delay has elapsed is reported missing and dropped.
type PendingQueue struct {
	fs          afero.Fs
	staging     string
	dest        DestinationFunc
	extensions  []string
	settleDelay time.Duration
	clock       Clock
	l           logger.Logger
	label       string
	handlers    *Handlers

	items     []PendingDownload
	completed int
	missed    int
}

func NewPendingQueue(fs afero.Fs, stagingDir string, dest DestinationFunc, opts *QueueOpts) *PendingQueue {
	if opts == nil {
		opts = &QueueOpts{}
	}
	q := &PendingQueue{
		fs:          fs,
		staging:     stagingDir,
		dest:        dest,
		extensions:  opts.Extensions,
		settleDelay: opts.SettleDelay,
		clock:       opts.Clock,
		l:           opts.Logger,
		label:       opts.Label,
		handlers:    &Handlers{},
		items:       make([]PendingDownload, 0),
	}
	if len(q.extensions) == 0 {
		q.extensions = DefaultExtensions
	}
	if q.clock == nil {
		q.clock = SystemClock()
	}
	if q.l == nil {
		q.l = logger.NewNopLogger()
	}
	if opts.Handlers != nil {
		*q.handlers = *opts.Handlers
	}
	q.handlers.setDefault()
	return q
}

// Push records a download fired now for id.
func (q *PendingQueue) Push(id int64) PendingDownload {
	d := PendingDownload{ID: id, TriggeredAt: q.clock.Now()}
	q.items = append(q.items, d)
	return d
}

func (q *PendingQueue) Len() int {
	return len(q.items)
}

// Items returns a copy of the queued downloads, oldest first.
func (q *PendingQueue) Items() []PendingDownload {
	out := make([]PendingDownload, len(q.items))
	copy(out, q.items)
	return out
}

func (q *PendingQueue) Completed() int {
	return q.completed
}

func (q *PendingQueue) Missed() int {
	return q.missed
}

// Reconcile settles queued downloads from the head while their settle delay
// has elapsed and returns how many were settled. It never blocks: it stops at
// the first entry still inside its window, since every later entry was
// fired after it.
func (q *PendingQueue) Reconcile() int {
	n := 0
	for len(q.items) > 0 && q.clock.Now().Sub(q.items[0].TriggeredAt) > q.settleDelay {
		q.settle(q.pop())
		n++
	}
	return n
}

// Flush settles every queued download immediately, ignoring the delay.
func (q *PendingQueue) Flush() int {
	n := 0
	for len(q.items) > 0 {
		q.settle(q.pop())
		n++
	}
	return n
}

// DrainAll settles every queued download, waiting for each entry's settle
// delay to elapse before checking it. If ctx is done while waiting, the
// remaining entries are flushed without waiting.
func (q *PendingQueue) DrainAll(ctx context.Context) int {
	n := 0
	for len(q.items) > 0 {
		remaining := q.items[0].TriggeredAt.Add(q.settleDelay).Sub(q.clock.Now())
		if remaining > 0 {
			select {
			case <-ctx.Done():
				return n + q.Flush()
			case <-q.clock.After(remaining):
			}
		}
		q.settle(q.pop())
		n++
	}
	return n
}

func (q *PendingQueue) pop() PendingDownload {
	d := q.items[0]
	q.items[0] = PendingDownload{}
	q.items = q.items[1:]
	return d
}

func (q *PendingQueue) settle(d PendingDownload) {
	for _, ext := range q.extensions {
		name := FileName(d.ID, ext)
		src := filepath.Join(q.staging, name)
		if ok, err := afero.Exists(q.fs, src); err != nil || !ok {
			continue
		}
		dir := q.dest(d.ID)
		if err := q.fs.MkdirAll(dir, 0755); err != nil {
			q.l.Error("%d Error creating directory %s: %v", d.ID, dir, err)
			continue
		}
		dst := filepath.Join(dir, name)
		if err := moveFile(q.fs, src, dst); err != nil {
			q.l.Error("%d Error copying file: %v", d.ID, err)
			continue
		}
		q.completed++
		q.l.Info("%d Loading complete", d.ID)
		q.handlers.CompleteHandler(q.label, d.ID, dst)
		return
	}
	q.missed++
	q.l.Warning("%d Not found", d.ID)
	q.handlers.MissHandler(q.label, d.ID)
}
