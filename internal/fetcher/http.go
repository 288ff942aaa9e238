package fetcher

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/user/prodcheck/pkg/plugin"
)

// HTTPFetcher uses Colly for fast, browser-free page probing. It is the
// right backend when the product markup is present in the server response.
type HTTPFetcher struct {
	collector  *colly.Collector
	setHeaders func(*colly.Request)
	timeout    time.Duration
}

// HTTPFetcherConfig holds configuration for the HTTP fetcher.
type HTTPFetcherConfig struct {
	UserAgent       string
	Referer         string
	Timeout         time.Duration
	MaxResponseSize int
	Proxy           string
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(), // retries re-fetch the same URL
	)
	c.IgnoreRobotsTxt = true

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.MaxResponseSize > 0 {
		c.MaxBodySize = cfg.MaxResponseSize
	}
	if cfg.Proxy != "" {
		if err := c.SetProxy(cfg.Proxy); err != nil {
			logrus.Warnf("Ignoring unusable proxy %q: %v", cfg.Proxy, err)
		}
	}

	// Storefronts serve stripped-down pages to clients that do not look
	// like a browser, so send the usual navigation headers. Registered on
	// the per-fetch clone in Fetch: Clone() copies no callbacks.
	setHeaders := func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
		r.Headers.Set("Cache-Control", "no-cache")
		if cfg.Referer != "" {
			r.Headers.Set("Referer", cfg.Referer)
		}
	}

	return &HTTPFetcher{collector: c, setHeaders: setHeaders, timeout: cfg.Timeout}
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch issues a single request. The returned PageData always carries the
// status code when a response arrived; transport faults and 5xx responses
// are tagged transient so the retry loop can take another pass.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: "http",
		FetchedAt:   start,
	}

	if err := ctx.Err(); err != nil {
		return page, err
	}

	// Clone the collector for this individual fetch so we get clean state.
	c := f.collector.Clone()

	c.OnRequest(f.setHeaders)

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.Body = string(r.Body)
		page.FinalURL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.StatusCode = r.StatusCode
			page.Body = string(r.Body)
			page.FinalURL = r.Request.URL.String()
		}
		tagFailure(page, err)
	})

	if err := c.Visit(targetURL); err != nil {
		// Visit errors that never reached OnError (e.g. a URL colly
		// refuses to parse) cannot be fixed by retrying.
		if page.Failure == plugin.FailureNone && page.StatusCode == 0 {
			page.Failure = plugin.FailureTerminal
			page.FailureReason = err.Error()
		}
	}
	c.Wait()

	page.FetchDuration = time.Since(start)
	return page, ctx.Err()
}

func (f *HTTPFetcher) Close() error { return nil }

// tagFailure decides whether a failed request is worth retrying.
func tagFailure(page *plugin.PageData, err error) {
	switch {
	case page.StatusCode >= 500:
		page.Failure = plugin.FailureTransient
		page.FailureReason = "server error: " + err.Error()
	case page.StatusCode >= 400:
		// A definitive response; the classifier decides what it means.
		page.Failure = plugin.FailureNone
		page.FailureReason = err.Error()
	case isTimeout(err):
		page.Failure = plugin.FailureTransient
		page.FailureReason = "request timed out: " + err.Error()
	default:
		// Connection resets, DNS hiccups and friends.
		page.Failure = plugin.FailureTransient
		page.FailureReason = err.Error()
	}
}

func isTimeout(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}
