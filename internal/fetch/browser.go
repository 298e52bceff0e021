// internal/fetch/browser.go
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/bhzfoot/fixturebot/internal/utils"
)

// RendererConfig configures the headless-browser fetch used for sources whose
// fixture lists are built client-side and never appear in the raw HTML.
type RendererConfig struct {
	Timeout   time.Duration
	UserAgent string
	WaitFor   string // optional selector to wait for before snapshotting
}

// Renderer fetches a page through headless Chrome and returns the rendered
// DOM. It is only used for sources flagged render: true; plain sources go
// through Client.
type Renderer struct {
	config RendererConfig
	logger utils.Logger
}

// NewRenderer creates a rendered-page fetcher.
func NewRenderer(config RendererConfig, logger utils.Logger) *Renderer {
	if config.Timeout == 0 {
		config.Timeout = 45 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &Renderer{config: config, logger: logger}
}

// RenderDocument navigates to the URL, waits for the page to settle, and
// parses the rendered DOM. Each call uses a fresh browser context; the
// pipeline is sequential and a pooled browser buys nothing here.
func (r *Renderer) RenderDocument(ctx context.Context, targetURL string) (*goquery.Document, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // required in container environments
		chromedp.UserAgent(r.config.UserAgent),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, r.config.Timeout)
	defer cancelTimeout()

	actions := []chromedp.Action{chromedp.Navigate(targetURL)}
	if r.config.WaitFor != "" {
		actions = append(actions, chromedp.WaitVisible(r.config.WaitFor, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", targetURL, err)
	}
	r.logger.Debugf("rendered %s in %s (%d bytes)", targetURL, time.Since(start), len(html))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &DecodeError{URL: targetURL, Cause: err}
	}
	return doc, nil
}
