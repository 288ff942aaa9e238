package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/user/prodcheck/pkg/plugin"
)

// timestampLayout is the wall-clock rendering used in every sink.
const timestampLayout = "2006-01-02 15:04:05"

// csvHeader is the column order of the output contract.
var csvHeader = []string{
	"url", "status", "title", "product_id", "price",
	"availability", "color", "category", "timestamp",
}

// CSVWriter persists records as one CSV row per URL. Each flush rewrites
// the whole file, so the sink always reflects the deduplicated record set
// even after an overwrite or an aborted run.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a CSV result writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Name() string { return "csv" }

func (w *CSVWriter) Flush(records []*plugin.ProductRecord) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *CSVWriter) Finalize(summary *plugin.RunSummary) error {
	return w.Flush(summary.Records)
}

func row(rec *plugin.ProductRecord) []string {
	return []string{
		rec.URL,
		string(rec.Status),
		rec.Title,
		rec.ProductID,
		rec.Price,
		rec.Availability,
		rec.Color,
		rec.Category,
		formatTimestamp(rec.Timestamp),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
