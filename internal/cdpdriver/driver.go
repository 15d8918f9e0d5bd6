package cdpdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/marauder-dl/marauder/pkg/logger"
	"github.com/marauder-dl/marauder/pkg/marauder"
)

const (
	DEF_WINDOW_WIDTH  = 1920
	DEF_WINDOW_HEIGHT = 1080
)

// hitTestJS reports whether the element's center point is not covered by
// another element.
const hitTestJS = `function() {
	const r = this.getBoundingClientRect();
	const el = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	return el !== null && (el === this || this.contains(el));
}`

// Options configures the browser process started for each session.
type Options struct {
	// Headless hides the browser window.
	Headless bool
	// ExecPath overrides the browser executable. Empty means autodetect.
	ExecPath  string
	UserAgent string
	// NoSandbox disables the Chrome sandbox, needed when running as root.
	NoSandbox bool
	Logger    logger.Logger
}

// Driver starts one browser process per session.
type Driver struct {
	opts Options
	l    logger.Logger
}

func New(opts Options) *Driver {
	l := opts.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Driver{opts: opts, l: l}
}

func (d *Driver) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(DEF_WINDOW_WIDTH, DEF_WINDOW_HEIGHT),
	)
	if !d.opts.Headless {
		// undo chromedp.Headless from the defaults
		opts = append(opts,
			chromedp.Flag("headless", false),
			chromedp.Flag("hide-scrollbars", false),
			chromedp.Flag("mute-audio", false),
		)
	}
	if d.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.opts.ExecPath))
	}
	if d.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.opts.UserAgent))
	}
	if d.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Open starts a browser that saves downloads into opts.DownloadDir. The
// browser outlives ctx; it is stopped by Session.Close.
func (d *Driver) Open(ctx context.Context, opts marauder.SessionOptions) (marauder.Session, error) {
	if opts.DownloadDir == "" {
		return nil, errors.New("download directory is required")
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), d.allocatorOptions()...)
	browserCtx, _ := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(d.l.Warning),
	)
	s := &session{ctx: browserCtx}
	s.closeFn = func() error {
		err := chromedp.Cancel(browserCtx)
		allocCancel()
		return err
	}

	// the first Run starts the browser and binds it to browserCtx, so it
	// must not run on a derived context
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	c, cancel := s.bind(ctx)
	defer cancel()
	err := chromedp.Run(c, chromedp.ActionFunc(func(ctx context.Context) error {
		return browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(opts.DownloadDir).
			Do(cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Browser))
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("set download directory: %w", err)
	}
	return s, nil
}

type session struct {
	ctx     context.Context
	closeFn func() error
	once    sync.Once
	err     error
}

// bind derives a context for one call from the browser context that is
// also cancelled when ctx is.
func (s *session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	c, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

func (s *session) Navigate(ctx context.Context, url string) error {
	c, cancel := s.bind(ctx)
	defer cancel()
	return chromedp.Run(c, chromedp.Navigate(url))
}

func (s *session) WaitActionable(ctx context.Context, selector string, timeout time.Duration) (marauder.Element, error) {
	c, cancel := s.bind(ctx)
	defer cancel()
	c, tcancel := context.WithTimeout(c, timeout)
	defer tcancel()

	var nodes []*cdp.Node
	err := chromedp.Run(c,
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.WaitEnabled(selector, chromedp.BySearch),
		chromedp.Nodes(selector, &nodes, chromedp.BySearch),
	)
	if err != nil {
		return nil, classify(ctx, selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s matched nothing", marauder.ErrElementNotReady, selector)
	}
	return nodes[0], nil
}

func (s *session) SetAttribute(ctx context.Context, el marauder.Element, name, value string) error {
	node, err := asNode(el)
	if err != nil {
		return err
	}
	c, cancel := s.bind(ctx)
	defer cancel()
	err = chromedp.Run(c, chromedp.SetAttributeValue([]cdp.NodeID{node.NodeID}, name, value, chromedp.ByNodeID))
	if err != nil {
		return classify(ctx, name, err)
	}
	return nil
}

func (s *session) Activate(ctx context.Context, el marauder.Element) error {
	node, err := asNode(el)
	if err != nil {
		return err
	}
	c, cancel := s.bind(ctx)
	defer cancel()

	var clear bool
	err = chromedp.Run(c, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(node.NodeID).Do(ctx); err != nil {
			return err
		}
		obj, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(hitTestJS).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		clear = res != nil && string(res.Value) == "true"
		return nil
	}))
	if err != nil {
		return classify(ctx, "activate", err)
	}
	if !clear {
		return fmt.Errorf("%w: element is covered by another element", marauder.ErrActivationBlocked)
	}
	if err := chromedp.Run(c, chromedp.MouseClickNode(node)); err != nil {
		return fmt.Errorf("%w: %w", marauder.ErrActivationBlocked, err)
	}
	return nil
}

func (s *session) Close() error {
	s.once.Do(func() {
		if s.closeFn != nil {
			s.err = s.closeFn()
		}
	})
	return s.err
}

func asNode(el marauder.Element) (*cdp.Node, error) {
	node, ok := el.(*cdp.Node)
	if !ok || node == nil {
		return nil, fmt.Errorf("%w: element %T was not returned by this driver", marauder.ErrElementNotReady, el)
	}
	return node, nil
}

// classify maps a driver error to ErrElementNotReady unless the caller's
// context ended, in which case its error is returned as is.
func classify(ctx context.Context, what string, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: timed out", marauder.ErrElementNotReady, what)
	}
	return fmt.Errorf("%w: %s: %w", marauder.ErrElementNotReady, what, err)
}
