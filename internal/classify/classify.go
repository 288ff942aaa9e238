// Package classify maps a fetch outcome to one of the five result statuses.
package classify

import (
	"regexp"
	"time"

	"github.com/user/prodcheck/internal/extract"
	"github.com/user/prodcheck/pkg/plugin"
)

// Markers holds the signatures used to recognize blocked and missing pages.
// They are site-specific and replaceable as a whole; the classification
// order itself never changes.
type Markers struct {
	DeniedStatuses   []int
	DeniedPatterns   []*regexp.Regexp
	NotFoundStatuses []int
	NotFoundPatterns []*regexp.Regexp
}

// DefaultMarkers covers the common storefront block and not-found signals.
func DefaultMarkers() Markers {
	return Markers{
		DeniedStatuses: []int{403, 429},
		DeniedPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)captcha`),
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`アクセスが拒否されました`),
		},
		NotFoundStatuses: []int{404},
		NotFoundPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)page not found`),
			regexp.MustCompile(`ページが見つかりません`),
			regexp.MustCompile(`(?i)<title>[^<]*\b404\b`),
		},
	}
}

// Classifier turns PageData into a ProductRecord. Classification is
// deterministic: the same status code, body and failure tag always produce
// the same status and the same extracted fields.
type Classifier struct {
	markers   Markers
	selectors extract.Selectors
	now       func() time.Time
}

// New creates a Classifier with the given markers and extraction selectors.
func New(markers Markers, selectors extract.Selectors) *Classifier {
	return &Classifier{
		markers:   markers,
		selectors: selectors,
		now:       time.Now,
	}
}

// Classify evaluates the guard chain in priority order: access denial,
// not found, fetched-but-empty, success, then the error catch-all.
func (c *Classifier) Classify(page *plugin.PageData) *plugin.ProductRecord {
	rec := &plugin.ProductRecord{
		URL:       page.URL,
		Status:    plugin.StatusError,
		Timestamp: c.now(),
	}

	// The URL path often names the product even when the page does not.
	rec.Category, rec.ProductID, rec.Color = extract.FromURL(page.URL, c.selectors.URLPatterns)

	switch {
	case c.denied(page):
		rec.Status = plugin.StatusAccessDenied

	case c.notFound(page):
		rec.Status = plugin.StatusPageNotFound

	case page.Failure == plugin.FailureNone && fetched(page.StatusCode):
		product, err := extract.FromHTML(page.Body, c.selectors)
		if err != nil {
			rec.Title = "unreadable page content: " + err.Error()
			return rec
		}
		rec.Title = product.Title
		rec.Price = product.Price
		rec.Availability = product.Availability

		if product.HasInfo() {
			rec.Status = plugin.StatusSuccess
		} else {
			rec.Status = plugin.StatusNoProductInfo
		}

	default:
		// Retry exhaustion, terminal backend faults, unexpected statuses.
		rec.Title = page.FailureReason
	}

	return rec
}

func (c *Classifier) denied(page *plugin.PageData) bool {
	if containsStatus(c.markers.DeniedStatuses, page.StatusCode) {
		return true
	}
	return page.Failure == plugin.FailureNone && matchesAny(c.markers.DeniedPatterns, page.Body)
}

func (c *Classifier) notFound(page *plugin.PageData) bool {
	if containsStatus(c.markers.NotFoundStatuses, page.StatusCode) {
		return true
	}
	return page.Failure == plugin.FailureNone && matchesAny(c.markers.NotFoundPatterns, page.Body)
}

// fetched reports whether the status code counts as a delivered page.
func fetched(status int) bool {
	return status >= 200 && status < 400
}

func containsStatus(set []int, status int) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp, body string) bool {
	if body == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(body) {
			return true
		}
	}
	return false
}
