package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/waftester/dorkshot/pkg/duration"
)

// Session is one Chrome process with a single tab. It satisfies the page
// contract used by the screenshot package and io.Closer.
type Session struct {
	ctx           context.Context // tab context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	logger        *slog.Logger

	closeOnce sync.Once
}

// Launch starts Chrome with opts and opens a tab sized to the viewport.
// The browser outlives ctx; call Close to stop it.
func Launch(ctx context.Context, opts Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), slog.String("source", "chromedp"))
		}),
	)

	s := &Session{
		ctx:           browserCtx,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		logger:        logger,
	}

	// The first Run starts the process and must use the tab context itself:
	// a deadline on it would tear the browser down when it expires.
	launchCtx, cancel := context.WithTimeout(ctx, duration.BrowserLaunch)
	defer cancel()
	stop := context.AfterFunc(launchCtx, browserCancel)
	err := chromedp.Run(browserCtx, chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)))
	stopped := stop()
	if err != nil || !stopped {
		s.Close()
		if err == nil {
			err = launchCtx.Err()
		}
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	logger.Debug("browser launched",
		slog.Int("width", opts.Width),
		slog.Int("height", opts.Height),
		slog.Bool("headless", !opts.Headful))
	return s, nil
}

// run executes actions on the tab, bounded by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url in the tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// SetZoom sets the CSS zoom of the document body.
func (s *Session) SetZoom(ctx context.Context, percent int) error {
	var ignored any
	return s.run(ctx, chromedp.Evaluate(zoomScript(percent), &ignored))
}

func zoomScript(percent int) string {
	return fmt.Sprintf("document.body.style.zoom='%d%%'", percent)
}

// WaitReady blocks until an element matching the CSS selector is ready.
func (s *Session) WaitReady(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// CaptureScreenshot returns a PNG of the visible viewport.
func (s *Session) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithFromSurface(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close stops the browser. If the graceful shutdown does not finish within
// duration.BrowserShutdown the process tree is killed. Safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		// Grab the process before cancelling; it is gone from the context after.
		var proc *os.Process
		if c := chromedp.FromContext(s.ctx); c != nil && c.Browser != nil {
			proc = c.Browser.Process()
		}

		done := make(chan struct{})
		go func() {
			s.browserCancel()
			s.allocCancel()
			close(done)
		}()

		timer := time.NewTimer(duration.BrowserShutdown)
		defer timer.Stop()
		select {
		case <-done:
			s.logger.Debug("browser closed")
		case <-timer.C:
			killProcessTree(proc)
			s.logger.Warn("browser shutdown timed out, killed process tree",
				slog.Duration("timeout", duration.BrowserShutdown))
		}
	})
	return nil
}
