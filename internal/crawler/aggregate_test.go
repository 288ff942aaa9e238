package crawler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/prodcheck/internal/crawler"
	"github.com/user/prodcheck/pkg/plugin"
)

func TestAggregator(t *testing.T) {
	t.Parallel()

	t.Run("preserves submission order", func(t *testing.T) {
		t.Parallel()

		agg := crawler.NewAggregator()
		agg.Record(&plugin.ProductRecord{URL: "u1", Status: plugin.StatusSuccess})
		agg.Record(&plugin.ProductRecord{URL: "u2", Status: plugin.StatusError})
		agg.Record(&plugin.ProductRecord{URL: "u3", Status: plugin.StatusSuccess})

		records := agg.Records()
		require.Len(t, records, 3)
		assert.Equal(t, "u1", records[0].URL)
		assert.Equal(t, "u2", records[1].URL)
		assert.Equal(t, "u3", records[2].URL)
	})

	t.Run("same URL overwrites in place", func(t *testing.T) {
		t.Parallel()

		agg := crawler.NewAggregator()
		agg.Record(&plugin.ProductRecord{URL: "u1", Status: plugin.StatusError})
		agg.Record(&plugin.ProductRecord{URL: "u2", Status: plugin.StatusSuccess})
		agg.Record(&plugin.ProductRecord{URL: "u1", Status: plugin.StatusSuccess})

		records := agg.Records()
		require.Len(t, records, 2)
		assert.Equal(t, "u1", records[0].URL)
		assert.Equal(t, plugin.StatusSuccess, records[0].Status)
	})

	t.Run("summary counts every status once", func(t *testing.T) {
		t.Parallel()

		agg := crawler.NewAggregator()
		agg.Record(&plugin.ProductRecord{URL: "u1", Status: plugin.StatusSuccess})
		agg.Record(&plugin.ProductRecord{URL: "u2", Status: plugin.StatusSuccess})
		agg.Record(&plugin.ProductRecord{URL: "u3", Status: plugin.StatusPageNotFound})
		agg.Record(&plugin.ProductRecord{URL: "u4", Status: plugin.StatusAccessDenied})

		summary := agg.Summary()
		assert.Equal(t, 4, summary.Total)
		assert.Equal(t, 2, summary.ByStatus[plugin.StatusSuccess])
		assert.Equal(t, 1, summary.ByStatus[plugin.StatusPageNotFound])
		assert.Equal(t, 1, summary.ByStatus[plugin.StatusAccessDenied])
		assert.Equal(t, 0, summary.ByStatus[plugin.StatusError])
		assert.GreaterOrEqual(t, summary.Duration, time.Duration(0))
		assert.False(t, summary.FinishedAt.Before(summary.StartedAt))
	})

	t.Run("records snapshot is detached", func(t *testing.T) {
		t.Parallel()

		agg := crawler.NewAggregator()
		agg.Record(&plugin.ProductRecord{URL: "u1", Status: plugin.StatusSuccess})

		snapshot := agg.Records()
		agg.Record(&plugin.ProductRecord{URL: "u2", Status: plugin.StatusError})

		assert.Len(t, snapshot, 1)
		assert.Equal(t, 2, agg.Len())
	})
}
