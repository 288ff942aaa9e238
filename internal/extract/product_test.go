package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/prodcheck/internal/extract"
)

const productPage = `<!DOCTYPE html>
<html lang="ja">
<head><title>Running Shoe X</title></head>
<body>
  <h1>Running Shoe X</h1>
  <div class="product-price">12000</div>
  <div class="stock-status">在庫あり</div>
</body>
</html>`

const jsonLDPage = `<!DOCTYPE html>
<html>
<head>
  <title>Trail Shoe Y</title>
  <script type="application/ld+json">
  [
    {"@type": "BreadcrumbList"},
    {"@type": "Product",
     "name": "Trail Shoe Y",
     "offers": {"price": 9800, "availability": "http://schema.org/OutOfStock"}}
  ]
  </script>
</head>
<body><p>rendered client side</p></body>
</html>`

func TestFromHTML(t *testing.T) {
	t.Parallel()

	t.Run("selector-based extraction", func(t *testing.T) {
		t.Parallel()

		p, err := extract.FromHTML(productPage, extract.DefaultSelectors())
		require.NoError(t, err)

		assert.Equal(t, "Running Shoe X", p.Title)
		assert.Equal(t, "12000", p.Price)
		assert.Equal(t, "在庫あり", p.Availability)
		assert.True(t, p.HasInfo())
	})

	t.Run("json-ld fallback fills missing fields", func(t *testing.T) {
		t.Parallel()

		p, err := extract.FromHTML(jsonLDPage, extract.DefaultSelectors())
		require.NoError(t, err)

		assert.Equal(t, "Trail Shoe Y", p.Title)
		assert.Equal(t, "9800", p.Price)
		assert.Equal(t, "out of stock", p.Availability)
	})

	t.Run("page without markers has no info", func(t *testing.T) {
		t.Parallel()

		p, err := extract.FromHTML(`<html><head><title>Store Home</title></head><body></body></html>`,
			extract.DefaultSelectors())
		require.NoError(t, err)

		assert.Equal(t, "Store Home", p.Title)
		assert.Empty(t, p.Price)
		assert.Empty(t, p.Availability)
		assert.False(t, p.HasInfo())
	})

	t.Run("extraction is deterministic", func(t *testing.T) {
		t.Parallel()

		first, err := extract.FromHTML(jsonLDPage, extract.DefaultSelectors())
		require.NoError(t, err)
		second, err := extract.FromHTML(jsonLDPage, extract.DefaultSelectors())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestFromURL(t *testing.T) {
	t.Parallel()

	patterns := extract.DefaultSelectors().URLPatterns

	t.Run("standard product path", func(t *testing.T) {
		t.Parallel()

		category, id, color := extract.FromURL(
			"https://www.asics.com/jp/ja-jp/running/p/1011A123-400.html", patterns)
		assert.Equal(t, "running", category)
		assert.Equal(t, "1011A123", id)
		assert.Equal(t, "400", color)
	})

	t.Run("sale path", func(t *testing.T) {
		t.Parallel()

		category, id, color := extract.FromURL(
			"https://www.asics.com/jp/ja-jp/sale/tennis/p/1041B099-101.html", patterns)
		assert.Equal(t, "tennis", category)
		assert.Equal(t, "1041B099", id)
		assert.Equal(t, "101", color)
	})

	t.Run("non-product path yields nothing", func(t *testing.T) {
		t.Parallel()

		category, id, color := extract.FromURL("https://www.asics.com/jp/ja-jp/", patterns)
		assert.Empty(t, category)
		assert.Empty(t, id)
		assert.Empty(t, color)
	})
}
