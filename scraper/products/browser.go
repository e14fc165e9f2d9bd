package products

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"scraper-analytics/utils"
)

// Readiness conditions a page load can wait for.
const (
	ReadyLoad        = "load"
	ReadyNetworkIdle = "networkidle"
	ReadySelector    = "selector"
)

// ReadyCondition tells the browser when a loaded page is ready to be read.
type ReadyCondition struct {
	Kind     string
	Selector string
}

func (r ReadyCondition) String() string {
	if r.Kind == ReadySelector {
		return "selector " + r.Selector
	}
	return r.Kind
}

// Browser loads a page and returns its rendered HTML once ready.
// Fetch must honour ctx's deadline and release every resource before returning.
type Browser interface {
	Fetch(ctx context.Context, url string, ready ReadyCondition) (string, error)
}

// ChromeBrowser is a Browser backed by a headless Chrome driven through chromedp.
// Each Fetch launches its own browser process and tears it down on return.
type ChromeBrowser struct {
	chromeBin string
	logger    *utils.Logger
}

// NewChromeBrowser creates a ChromeBrowser. An empty chromeBin triggers a lookup
// of the usual Chrome/Chromium install locations.
func NewChromeBrowser(chromeBin string, logger *utils.Logger) *ChromeBrowser {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &ChromeBrowser{chromeBin: chromeBin, logger: logger}
}

func (b *ChromeBrowser) Fetch(ctx context.Context, url string, ready ReadyCondition) (string, error) {
	b.logger.Debug("[browser] Using browser binary: %q", b.chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if b.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(b.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTask()

	// An empty Run starts the browser, separating launch failures from page failures.
	if err := chromedp.Run(taskCtx); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	var actions []chromedp.Action
	switch ready.Kind {
	case ReadyNetworkIdle:
		actions = append(actions, navigateUntilIdle(url))
	case ReadySelector:
		actions = append(actions,
			chromedp.Navigate(url),
			chromedp.WaitReady(ready.Selector, chromedp.ByQuery),
		)
	default:
		actions = append(actions, chromedp.Navigate(url))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("chromedp navigate: %w", err)
	}
	return html, nil
}

// navigateUntilIdle navigates to url and blocks until the main frame reports
// the networkIdle lifecycle event or ctx is done.
func navigateUntilIdle(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return fmt.Errorf("enable lifecycle events: %w", err)
		}
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return fmt.Errorf("get frame tree: %w", err)
		}

		w := newIdleWatcher(tree.Frame.ID)
		chromedp.ListenTarget(ctx, w.observe)

		if err := chromedp.Navigate(url).Do(ctx); err != nil {
			return err
		}

		select {
		case <-w.idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// idleWatcher closes idle once the main frame reports networkIdle after the
// navigation's init event. Events from other frames are ignored.
type idleWatcher struct {
	mainFrame cdp.FrameID
	idle      chan struct{}
	started   atomic.Bool
	once      sync.Once
}

func newIdleWatcher(mainFrame cdp.FrameID) *idleWatcher {
	return &idleWatcher{mainFrame: mainFrame, idle: make(chan struct{})}
}

func (w *idleWatcher) observe(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || e.FrameID != w.mainFrame {
		return
	}
	switch e.Name {
	case "init":
		w.started.Store(true)
	case "networkIdle":
		if w.started.Load() {
			w.once.Do(func() { close(w.idle) })
		}
	}
}

// findChromeBinary locates a Chrome/Chromium binary, returning "" to let
// chromedp fall back to its own lookup.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
