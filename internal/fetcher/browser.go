package fetcher

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/user/prodcheck/pkg/plugin"
)

// BrowserFetcher uses Rod (headless Chrome) to render pages whose product
// markup only exists after client-side scripts run. One browser session is
// reused for every fetch and is owned exclusively by this instance.
type BrowserFetcher struct {
	browser   *rod.Browser
	timeout   time.Duration
	userAgent string
}

// BrowserFetcherConfig holds configuration for the browser fetcher.
type BrowserFetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
	Headless  bool

	// BrowserPath points at a specific Chrome/Chromium binary. Empty
	// means let the launcher find or download one.
	BrowserPath string
}

// NewBrowserFetcher launches a browser and connects to it.
func NewBrowserFetcher(cfg BrowserFetcherConfig) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080").
		Set("lang", "ja")

	if cfg.BrowserPath != "" {
		logrus.Debugf("Using browser binary at %s", cfg.BrowserPath)
		l = l.Bin(cfg.BrowserPath)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &BrowserFetcher{
		browser:   browser,
		timeout:   timeout,
		userAgent: cfg.UserAgent,
	}, nil
}

func (f *BrowserFetcher) Name() string { return "browser" }

// Fetch renders the page and returns its final HTML. The browser never
// surfaces the HTTP status of the navigation, so a rendered page reports
// 200 and leaves not-found/blocked detection to the body markers.
func (f *BrowserFetcher) Fetch(ctx context.Context, targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: "browser",
		FetchedAt:   start,
	}

	if err := ctx.Err(); err != nil {
		return page, err
	}

	rodPage, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		// The session is gone; another attempt on the same handle
		// cannot succeed.
		page.Failure = plugin.FailureTerminal
		page.FailureReason = "browser session unavailable: " + err.Error()
		page.FetchDuration = time.Since(start)
		return page, nil
	}
	defer rodPage.Close()

	rodPage = rodPage.Context(ctx).Timeout(f.timeout)

	if f.userAgent != "" {
		_ = rodPage.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: f.userAgent,
		})
	}

	if err := rodPage.Navigate(targetURL); err != nil {
		transientBrowserFailure(page, "navigation failed", err)
		page.FetchDuration = time.Since(start)
		return page, ctx.Err()
	}

	if err := rodPage.WaitLoad(); err != nil {
		transientBrowserFailure(page, "page load timed out", err)
		page.FetchDuration = time.Since(start)
		return page, ctx.Err()
	}

	if info, err := rodPage.Info(); err == nil {
		page.FinalURL = info.URL
	}

	html, err := rodPage.HTML()
	if err != nil {
		transientBrowserFailure(page, "could not read rendered content", err)
		page.FetchDuration = time.Since(start)
		return page, ctx.Err()
	}

	page.StatusCode = 200
	page.Body = html
	page.ContentType = "text/html"
	page.FetchDuration = time.Since(start)
	return page, ctx.Err()
}

func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		return f.browser.Close()
	}
	return nil
}

func transientBrowserFailure(page *plugin.PageData, what string, err error) {
	logrus.Debugf("Browser fetch of %s: %s: %v", page.URL, what, err)
	page.Failure = plugin.FailureTransient
	page.FailureReason = what + ": " + err.Error()
}
