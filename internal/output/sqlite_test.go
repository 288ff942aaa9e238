package output_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/prodcheck/internal/output"
	"github.com/user/prodcheck/pkg/plugin"
)

func TestSQLiteWriter(t *testing.T) {
	t.Parallel()

	t.Run("upserts by url", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.db")
		w, err := output.NewSQLiteWriter(path)
		require.NoError(t, err)

		rec := &plugin.ProductRecord{
			URL:       "https://www.asics.com/jp/ja-jp/running/p/ABC123-400.html",
			Status:    plugin.StatusError,
			Timestamp: time.Now(),
		}
		require.NoError(t, w.Flush([]*plugin.ProductRecord{rec}))

		// Second pass for the same URL overwrites the verdict.
		rec.Status = plugin.StatusSuccess
		rec.Title = "Running Shoe X"
		require.NoError(t, w.Finalize(&plugin.RunSummary{
			Records: []*plugin.ProductRecord{rec},
		}))

		db, err := sql.Open("sqlite3", path)
		require.NoError(t, err)
		defer db.Close()

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&count))
		assert.Equal(t, 1, count)

		var status, title string
		require.NoError(t, db.QueryRow(
			`SELECT status, title FROM results WHERE url = ?`, rec.URL,
		).Scan(&status, &title))
		assert.Equal(t, "success", status)
		assert.Equal(t, "Running Shoe X", title)
	})
}
