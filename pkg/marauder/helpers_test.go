package marauder

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	testProxy  = "proxy"
	testTarget = "target-{id}"
	testRoot   = "/out"
)

func testProfile() Profile {
	p := DefaultProfile()
	p.URL = "https://example.test/search"
	p.ProxySelector = testProxy
	p.TargetSelector = testTarget
	p.LoadTimeout = time.Second
	return p
}

// fakeClock only moves when told to. After advances the clock by d and
// fires immediately.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 9, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// fakeAutomation scripts browser behaviour per identifier.
type fakeAutomation struct {
	mu sync.Mutex
	fs afero.Fs

	// openErr, when set, is returned by the opens listed in failOpens (1-based)
	// or by every open if failOpens is empty.
	openErr   error
	failOpens map[int]bool
	proxyErr  error
	// result decides the outcome of the n-th attempt (1-based) at id:
	// nil succeeds, ErrElementNotReady fails the wait, ErrActivationBlocked
	// fails the click.
	result func(id int64, attempt int) error
	// deposit writes <id>.<ext> into the download directory on success.
	deposit string
	// onActivate runs after a successful activation.
	onActivate func(id int64)
	panicOnOpen bool

	opens    int
	closes   int
	attempts []int64
	fired    []int64
	attrs    []string
	dirs     []string
}

func (a *fakeAutomation) Open(ctx context.Context, opts SessionOptions) (Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.panicOnOpen {
		panic("driver crashed")
	}
	a.opens++
	a.dirs = append(a.dirs, opts.DownloadDir)
	if a.openErr != nil && (len(a.failOpens) == 0 || a.failOpens[a.opens]) {
		return nil, a.openErr
	}
	return &fakeSession{a: a, dir: opts.DownloadDir}, nil
}

func (a *fakeAutomation) Opens() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opens
}

func (a *fakeAutomation) Attempts() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int64(nil), a.attempts...)
}

func (a *fakeAutomation) Fired() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int64(nil), a.fired...)
}

func (a *fakeAutomation) attemptsAt(id int64) int {
	n := 0
	for _, v := range a.attempts {
		if v == id {
			n++
		}
	}
	return n
}

type fakeElement struct {
	proxy bool
	id    int64
}

type fakeSession struct {
	a      *fakeAutomation
	dir    string
	value  string
	closed bool
	url    string
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.url = url
	return nil
}

func (s *fakeSession) WaitActionable(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	if selector == testProxy {
		if s.a.proxyErr != nil {
			return nil, s.a.proxyErr
		}
		return &fakeElement{proxy: true}, nil
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(selector, "target-"), 10, 64)
	if err != nil || strconv.FormatInt(id, 10) != s.value {
		return nil, errors.New("no such element")
	}
	s.a.attempts = append(s.a.attempts, id)
	if s.a.result != nil {
		if err := s.a.result(id, s.a.attemptsAt(id)); errors.Is(err, ErrElementNotReady) {
			return nil, err
		}
	}
	return &fakeElement{id: id}, nil
}

func (s *fakeSession) SetAttribute(ctx context.Context, el Element, name, value string) error {
	if s.closed {
		return errors.New("session closed")
	}
	if e, ok := el.(*fakeElement); !ok || !e.proxy {
		return errors.New("attribute set on wrong element")
	}
	s.a.mu.Lock()
	s.a.attrs = append(s.a.attrs, name+"="+value)
	s.a.mu.Unlock()
	s.value = value
	return nil
}

func (s *fakeSession) Activate(ctx context.Context, el Element) error {
	e := el.(*fakeElement)
	s.a.mu.Lock()
	if s.a.result != nil {
		if err := s.a.result(e.id, s.a.attemptsAt(e.id)); errors.Is(err, ErrActivationBlocked) {
			s.a.mu.Unlock()
			return err
		}
	}
	s.a.fired = append(s.a.fired, e.id)
	deposit, fs, hook := s.a.deposit, s.a.fs, s.a.onActivate
	s.a.mu.Unlock()

	if deposit != "" {
		_ = afero.WriteFile(fs, filepath.Join(s.dir, FileName(e.id, deposit)), []byte("image"), 0644)
	}
	if hook != nil {
		hook(e.id)
	}
	return nil
}

func (s *fakeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.a.mu.Lock()
	s.a.closes++
	s.a.mu.Unlock()
	return nil
}

func int64sEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
