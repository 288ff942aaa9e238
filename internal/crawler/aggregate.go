package crawler

import (
	"time"

	"github.com/user/prodcheck/pkg/plugin"
)

// Aggregator collects one ProductRecord per URL, in submission order.
// A second record for the same URL overwrites the first in place, which
// keeps re-runs idempotent.
type Aggregator struct {
	byURL     map[string]int
	records   []*plugin.ProductRecord
	startedAt time.Time
}

// NewAggregator creates an empty Aggregator anchored at the current time.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byURL:     make(map[string]int),
		startedAt: time.Now(),
	}
}

// Record stores rec, overwriting any earlier record for the same URL.
func (a *Aggregator) Record(rec *plugin.ProductRecord) {
	if idx, ok := a.byURL[rec.URL]; ok {
		a.records[idx] = rec
		return
	}
	a.byURL[rec.URL] = len(a.records)
	a.records = append(a.records, rec)
}

// Len returns the number of distinct URLs recorded so far.
func (a *Aggregator) Len() int { return len(a.records) }

// Records returns a snapshot of the record set in submission order.
func (a *Aggregator) Records() []*plugin.ProductRecord {
	out := make([]*plugin.ProductRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Summary derives the per-status counts and run duration from the
// complete record set.
func (a *Aggregator) Summary() *plugin.RunSummary {
	byStatus := make(map[plugin.ResultStatus]int)
	for _, rec := range a.records {
		byStatus[rec.Status]++
	}

	finished := time.Now()
	return &plugin.RunSummary{
		Total:      len(a.records),
		ByStatus:   byStatus,
		StartedAt:  a.startedAt,
		FinishedAt: finished,
		Duration:   finished.Sub(a.startedAt),
		Records:    a.Records(),
	}
}
