package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/prodcheck/internal/fetcher"
	"github.com/user/prodcheck/pkg/plugin"
)

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	t.Run("sends the navigation headers on every request", func(t *testing.T) {
		t.Parallel()

		var got http.Header
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.Write([]byte(`<html><head><title>ok</title></head></html>`))
		}))
		defer srv.Close()

		f := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
			UserAgent: "probe/1.0",
			Referer:   "https://www.asics.com/jp/ja-jp/",
			Timeout:   5 * time.Second,
		})
		defer f.Close()

		page, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		require.Equal(t, 200, page.StatusCode)

		require.NotNil(t, got)
		assert.Equal(t, "https://www.asics.com/jp/ja-jp/", got.Get("Referer"))
		assert.Equal(t, "ja,en-US;q=0.9,en;q=0.8", got.Get("Accept-Language"))
		assert.Equal(t, "no-cache", got.Get("Cache-Control"))
		assert.Contains(t, got.Get("Accept"), "text/html")
		assert.Equal(t, "probe/1.0", got.Get("User-Agent"))
	})

	t.Run("headers survive repeated fetches of the same URL", func(t *testing.T) {
		t.Parallel()

		hits := 0
		var lastReferer string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			lastReferer = r.Header.Get("Referer")
			w.Write([]byte("<html></html>"))
		}))
		defer srv.Close()

		f := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
			Referer: "https://www.asics.com/jp/ja-jp/",
			Timeout: 5 * time.Second,
		})
		defer f.Close()

		for i := 0; i < 2; i++ {
			_, err := f.Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
		}

		assert.Equal(t, 2, hits)
		assert.Equal(t, "https://www.asics.com/jp/ja-jp/", lastReferer)
	})

	t.Run("404 comes back as a definitive response", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		f := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{Timeout: 5 * time.Second})
		defer f.Close()

		page, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)

		assert.Equal(t, 404, page.StatusCode)
		assert.Equal(t, plugin.FailureNone, page.Failure)
	})

	t.Run("500 is tagged transient", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "flaky", http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{Timeout: 5 * time.Second})
		defer f.Close()

		page, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)

		assert.Equal(t, 500, page.StatusCode)
		assert.Equal(t, plugin.FailureTransient, page.Failure)
	})
}
