package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/prodcheck/internal/classify"
	"github.com/user/prodcheck/internal/extract"
	"github.com/user/prodcheck/internal/fetcher"
	"github.com/user/prodcheck/internal/output"
	"github.com/user/prodcheck/internal/ratelimit"
	"github.com/user/prodcheck/pkg/plugin"
)

// Crawler is the core engine: it walks the URL list one task at a time,
// paces every fetch attempt through the rate limiter, retries transient
// failures, classifies each outcome and aggregates the records.
type Crawler struct {
	config     *Config
	fetch      plugin.Fetcher
	limiter    *ratelimit.Limiter
	classifier *classify.Classifier
	writers    []plugin.ResultWriter
	events     chan plugin.CrawlEvent
}

// crawlTask tracks retry progress for one URL. Only the retry loop touches
// the attempt counter.
type crawlTask struct {
	url     string
	attempt int
}

// New creates a new Crawler with the given configuration.
func New(config *Config) *Crawler {
	return &Crawler{
		config:     config,
		limiter:    ratelimit.New(config.MinDelay, config.MaxDelay),
		classifier: classify.New(classify.DefaultMarkers(), extract.DefaultSelectors()),
		events:     make(chan plugin.CrawlEvent, 1000),
	}
}

// Events returns the event channel for the CLI or other consumers.
func (c *Crawler) Events() <-chan plugin.CrawlEvent {
	return c.events
}

// Init initializes the fetch backend and the result sinks.
func (c *Crawler) Init() error {
	switch c.config.Method {
	case MethodBrowser:
		bf, err := fetcher.NewBrowserFetcher(fetcher.BrowserFetcherConfig{
			Timeout:     c.config.Timeout,
			UserAgent:   c.config.UserAgent,
			Headless:    c.config.Headless,
			BrowserPath: c.config.BrowserPath,
		})
		if err != nil {
			logrus.Warnf("Browser backend unavailable (%v), falling back to HTTP", err)
			c.config.Method = MethodHTTP
		} else {
			c.fetch = bf
		}
	case MethodHTTP:
		// handled below
	default:
		return fmt.Errorf("unknown fetch method %q", c.config.Method)
	}

	if c.fetch == nil {
		c.fetch = fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
			UserAgent:       c.config.UserAgent,
			Referer:         c.config.BaseURL + "/jp/ja-jp/",
			Timeout:         c.config.Timeout,
			MaxResponseSize: c.config.MaxResponseSize,
			Proxy:           c.config.Proxy,
		})
	}

	if c.config.OutputPath != "" {
		c.writers = append(c.writers, output.NewCSVWriter(c.config.OutputPath))
	}
	if c.config.DBPath != "" {
		store, err := output.NewSQLiteWriter(c.config.DBPath)
		if err != nil {
			return fmt.Errorf("opening result database: %w", err)
		}
		c.writers = append(c.writers, store)
	}

	return nil
}

// SetFetcher swaps in a custom fetch backend. Must be called before Run.
func (c *Crawler) SetFetcher(f plugin.Fetcher) { c.fetch = f }

// AddWriter registers an additional result sink.
func (c *Crawler) AddWriter(w plugin.ResultWriter) { c.writers = append(c.writers, w) }

// Run crawls every URL in order and blocks until the list is exhausted or
// ctx is canceled. Records gathered before cancellation are still flushed.
func (c *Crawler) Run(ctx context.Context, urls []string) (*plugin.RunSummary, error) {
	agg := NewAggregator()

	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventRunStarted,
		Message: fmt.Sprintf("Checking %d URLs via %s backend", len(urls), c.fetch.Name()),
	})

	for _, url := range urls {
		if ctx.Err() != nil {
			logrus.Infof("Run canceled with %d of %d URLs done", agg.Len(), len(urls))
			break
		}

		c.emit(plugin.CrawlEvent{Type: plugin.EventTaskStarted, URL: url})

		rec := c.crawlOne(ctx, url)
		if rec == nil {
			// Canceled mid-task; no verdict for this URL.
			continue
		}

		agg.Record(rec)
		c.emit(plugin.CrawlEvent{Type: plugin.EventTaskDone, URL: url, Record: rec})

		if c.config.CheckpointEvery > 0 && agg.Len()%c.config.CheckpointEvery == 0 {
			c.checkpoint(agg.Records())
		}
	}

	summary := agg.Summary()
	for _, w := range c.writers {
		if err := w.Finalize(summary); err != nil {
			logrus.Errorf("Finalizing %s output: %v", w.Name(), err)
		}
	}

	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventRunFinished,
		Message: fmt.Sprintf("Done: %d results in %s", summary.Total, summary.Duration.Round(time.Millisecond)),
	})
	close(c.events)

	return summary, nil
}

// crawlOne runs one task through the rate limiter, the fetch backend and
// the classifier, retrying transient failures up to the configured bound.
// Returns nil only when ctx is canceled before a verdict exists.
func (c *Crawler) crawlOne(ctx context.Context, url string) *plugin.ProductRecord {
	task := crawlTask{url: url}

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		page, err := c.fetch.Fetch(ctx, task.url)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// A fetcher returning an error outside cancellation breaks
			// its contract; keep the one-record-per-URL guarantee anyway.
			page = &plugin.PageData{
				URL:           task.url,
				FetcherUsed:   c.fetch.Name(),
				Failure:       plugin.FailureTerminal,
				FailureReason: err.Error(),
			}
		}
		task.attempt++

		if page.Failure == plugin.FailureTransient && task.attempt < c.config.MaxRetries {
			logrus.Debugf("Transient failure on %s (attempt %d/%d): %s",
				task.url, task.attempt, c.config.MaxRetries, page.FailureReason)
			c.emit(plugin.CrawlEvent{
				Type:    plugin.EventTaskRetry,
				URL:     task.url,
				Attempt: task.attempt,
				Message: page.FailureReason,
			})
			continue
		}

		rec := c.classifier.Classify(page)
		rec.Attempts = task.attempt
		return rec
	}
}

// checkpoint rewrites every sink with the records gathered so far, so an
// aborted run leaves usable output behind.
func (c *Crawler) checkpoint(records []*plugin.ProductRecord) {
	for _, w := range c.writers {
		if err := w.Flush(records); err != nil {
			logrus.Warnf("Checkpoint to %s failed: %v", w.Name(), err)
		}
	}
}

// emit sends an event to the event channel (non-blocking).
func (c *Crawler) emit(event plugin.CrawlEvent) {
	select {
	case c.events <- event:
	default:
		// Drop the event rather than stall the crawl on a slow consumer.
	}
}

// Close releases the fetch backend.
func (c *Crawler) Close() error {
	if c.fetch != nil {
		return c.fetch.Close()
	}
	return nil
}
