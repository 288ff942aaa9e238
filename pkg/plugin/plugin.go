// Package plugin defines the public interfaces for prodcheck.
// External tools can import this package to write custom fetchers or
// result writers without forking the project.
package plugin

import (
	"context"
	"time"
)

// ---------- Core Data Types ----------

// FailureKind tags a fetch outcome for the retry loop.
type FailureKind int

const (
	// FailureNone means the backend produced a usable response,
	// whatever its status code.
	FailureNone FailureKind = iota

	// FailureTransient covers timeouts, connection errors and 5xx
	// responses. These are retry-eligible.
	FailureTransient

	// FailureTerminal covers faults that another attempt cannot fix,
	// such as a malformed URL or a dead browser session.
	FailureTerminal
)

// PageData represents the outcome of a single fetch attempt.
type PageData struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	Body          string        `json:"-"`
	ContentType   string        `json:"content_type"`
	FetchedAt     time.Time     `json:"fetched_at"`
	FetchDuration time.Duration `json:"fetch_duration"`
	FetcherUsed   string        `json:"fetcher_used"`
	Failure       FailureKind   `json:"failure"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

// ResultStatus is the final verdict for one crawled URL.
type ResultStatus string

const (
	StatusSuccess       ResultStatus = "success"
	StatusPageNotFound  ResultStatus = "page_not_found"
	StatusNoProductInfo ResultStatus = "no_product_info"
	StatusAccessDenied  ResultStatus = "access_denied"
	StatusError         ResultStatus = "error"
)

// AllStatuses lists every ResultStatus in reporting order.
var AllStatuses = []ResultStatus{
	StatusSuccess,
	StatusPageNotFound,
	StatusNoProductInfo,
	StatusAccessDenied,
	StatusError,
}

// ProductRecord is the unit of output: one fully classified result per URL.
// Product fields are populated only when the page yielded them.
type ProductRecord struct {
	URL          string       `json:"url"`
	Status       ResultStatus `json:"status"`
	Title        string       `json:"title,omitempty"`
	ProductID    string       `json:"product_id,omitempty"`
	Price        string       `json:"price,omitempty"`
	Availability string       `json:"availability,omitempty"`
	Color        string       `json:"color,omitempty"`
	Category     string       `json:"category,omitempty"`
	Attempts     int          `json:"attempts"`
	Timestamp    time.Time    `json:"timestamp"`
}

// RunSummary is the aggregated output of an entire run.
type RunSummary struct {
	Total      int                  `json:"total"`
	ByStatus   map[ResultStatus]int `json:"by_status"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Duration   time.Duration        `json:"duration"`
	Records    []*ProductRecord     `json:"records"`
}

// ---------- Event Types ----------

// CrawlEvent represents a real-time event emitted by the crawler.
type CrawlEvent struct {
	Type    EventType
	URL     string
	Record  *ProductRecord
	Attempt int
	Error   error
	Message string
}

// EventType identifies the kind of event.
type EventType int

const (
	EventTaskStarted EventType = iota
	EventTaskRetry
	EventTaskDone
	EventRunStarted
	EventRunFinished
)

// ---------- Plugin Interfaces ----------

// Fetcher defines how a single page is retrieved.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL. The returned PageData
	// carries a failure tag instead of an error for anything that maps
	// to a business outcome; err is reserved for context cancellation.
	Fetch(ctx context.Context, url string) (*PageData, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// ResultWriter defines how classified records are persisted.
type ResultWriter interface {
	// Name returns a human-readable identifier for this writer.
	Name() string

	// Flush rewrites the sink with the full record set gathered so far.
	// Called periodically as a checkpoint and once at the end of the run.
	Flush(records []*ProductRecord) error

	// Finalize performs the last flush and closes resources.
	Finalize(summary *RunSummary) error
}
