// internal/browser/chrome.go
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/evostudios/StableScraper/internal/utils"
)

// Options configures the headless browser fetcher.
type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	WaitForElement string
	WaitDelay      time.Duration
}

// ChromeFetcher renders pages in headless Chrome and returns the
// resulting markup. It exists for report pages that assemble their
// video embeds with JavaScript, where a plain HTTP fetch sees an empty
// shell. Each fetch runs in a fresh tab off a shared allocator.
type ChromeFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	opts        Options
	logger      utils.Logger
}

// NewChromeFetcher prepares a fetcher. Chrome itself is not launched
// until the first Fetch call.
func NewChromeFetcher(opts Options, logger utils.Logger) *ChromeFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = utils.NewLogger()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &ChromeFetcher{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		opts:        opts,
		logger:      logger,
	}
}

// Fetch navigates to targetURL, waits for the page to settle and
// returns the rendered markup.
func (f *ChromeFetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	runCtx, cancelTimeout := context.WithTimeout(tabCtx, f.opts.Timeout)
	defer cancelTimeout()

	// The caller's context aborts the render even though chromedp
	// drives its own context chain.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	tasks := []chromedp.Action{
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
	}
	if f.opts.WaitForElement != "" {
		tasks = append(tasks, chromedp.WaitVisible(f.opts.WaitForElement))
	}
	if f.opts.WaitDelay > 0 {
		tasks = append(tasks, chromedp.Sleep(f.opts.WaitDelay))
	}

	var markup string
	tasks = append(tasks, chromedp.OuterHTML("html", &markup))

	start := time.Now()
	if err := chromedp.Run(runCtx, tasks...); err != nil {
		return "", utils.WrapError(utils.ErrCodeFetchFailed, "browser render failed", err).
			WithContext("url", targetURL)
	}

	f.logger.WithFields(map[string]interface{}{
		"url":       targetURL,
		"render_ms": time.Since(start).Milliseconds(),
	}).Debug("rendered page in headless browser")

	return markup, nil
}

// Close releases the browser allocator and any running Chrome process.
func (f *ChromeFetcher) Close() error {
	if f.allocCancel != nil {
		f.allocCancel()
	}
	return nil
}
