package cdpdriver

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/marauder-dl/marauder/pkg/marauder"
)

func TestAllocatorOptions(t *testing.T) {
	base := len(New(Options{Headless: true}).allocatorOptions())
	tests := []struct {
		name  string
		opts  Options
		extra int
	}{
		{"headless", Options{Headless: true}, 0},
		{"headful", Options{}, 3},
		{"exec path", Options{Headless: true, ExecPath: "/usr/bin/chromium"}, 1},
		{"everything", Options{ExecPath: "/c", UserAgent: "ua", NoSandbox: true}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(New(tt.opts).allocatorOptions()); got != base+tt.extra {
				t.Errorf("got %d options, want %d", got, base+tt.extra)
			}
		})
	}
}

func TestOpen_RequiresDownloadDir(t *testing.T) {
	_, err := New(Options{}).Open(context.Background(), marauder.SessionOptions{})
	if err == nil {
		t.Fatal("expected error for empty download dir")
	}
}

func TestClassify(t *testing.T) {
	err := classify(context.Background(), "//span", context.DeadlineExceeded)
	if !errors.Is(err, marauder.ErrElementNotReady) {
		t.Errorf("timeout should be not ready, got %v", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("a selector timeout must not look like the caller's deadline")
	}

	cause := errors.New("target crashed")
	err = classify(context.Background(), "//span", cause)
	if !errors.Is(err, marauder.ErrElementNotReady) || !errors.Is(err, cause) {
		t.Errorf("driver errors should wrap the cause, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := classify(ctx, "//span", cause); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller should get its own error, got %v", err)
	}
}

func TestAsNode(t *testing.T) {
	if _, err := asNode("not a node"); !errors.Is(err, marauder.ErrElementNotReady) {
		t.Errorf("got %v", err)
	}
	if _, err := asNode((*cdp.Node)(nil)); err == nil {
		t.Error("nil node should fail")
	}
	n := &cdp.Node{NodeID: 7}
	got, err := asNode(n)
	if err != nil || got != n {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestSession_CloseOnce(t *testing.T) {
	calls := 0
	s := &session{ctx: context.Background(), closeFn: func() error {
		calls++
		return errors.New("already gone")
	}}
	err1 := s.Close()
	err2 := s.Close()
	if calls != 1 {
		t.Fatalf("close ran %d times", calls)
	}
	if err1 == nil || err1 != err2 {
		t.Errorf("close errors %v, %v", err1, err2)
	}
}

func TestSession_BindFollowsCaller(t *testing.T) {
	s := &session{ctx: context.Background()}
	caller, cancelCaller := context.WithCancel(context.Background())
	c, cancel := s.bind(caller)
	defer cancel()

	if c.Err() != nil {
		t.Fatal("bound context done too early")
	}
	cancelCaller()
	<-c.Done()
}

func TestSession_BindReleases(t *testing.T) {
	s := &session{ctx: context.Background()}
	caller := context.Background()
	c, cancel := s.bind(caller)
	cancel()
	<-c.Done()
	if caller.Err() != nil {
		t.Error("releasing the call context must not affect the caller")
	}
}
