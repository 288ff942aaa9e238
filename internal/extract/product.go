// Package extract pulls product attributes out of fetched pages.
// All patterns are configuration: retail sites change their markup and the
// defaults here are a starting point, not a contract.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors holds the site-specific patterns used to locate product data.
type Selectors struct {
	// Price and Availability are CSS selector groups tried in order.
	Price        string
	Availability string

	// URLPatterns match product-page paths and capture
	// (category, product id, color code), in that group order.
	URLPatterns []*regexp.Regexp
}

// DefaultSelectors returns the selector set for a typical storefront layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Price:        `.product-price, .price, [data-test-id="product-price"]`,
		Availability: `.stock-status, .availability, [data-test-id="availability"]`,
		URLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`/jp/ja-jp/([^/]+)/p/([A-Z0-9]+)-([0-9]{3})\.html`),
			regexp.MustCompile(`/jp/ja-jp/([^/]+)/products/([A-Z0-9]+)-([0-9]{3})\.html`),
			regexp.MustCompile(`/jp/ja-jp/sale/([^/]+)/p/([A-Z0-9]+)-([0-9]{3})\.html`),
		},
	}
}

// Product holds the attributes extracted from page content. Identity fields
// (product id, color, category) come from FromURL instead: the URL path is
// authoritative for them. Fields the page did not yield stay empty.
type Product struct {
	Title        string
	Price        string
	Availability string
}

// HasInfo reports whether the page carried recognizable product markers.
// A bare title does not count: error pages have titles too.
func (p Product) HasInfo() bool {
	return p.Price != "" || p.Availability != ""
}

// FromURL extracts category, product id and color code from the URL path.
// Returns zero values when no pattern matches.
func FromURL(rawURL string, patterns []*regexp.Regexp) (category, productID, color string) {
	for _, pat := range patterns {
		if m := pat.FindStringSubmatch(rawURL); m != nil {
			return m[1], m[2], m[3]
		}
	}
	return "", "", ""
}

// FromHTML extracts product attributes from page content. Each field is
// best-effort: a missing field is left empty without failing the rest.
func FromHTML(body string, sel Selectors) (Product, error) {
	var p Product

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return p, err
	}

	p.Title = strings.TrimSpace(doc.Find("title").First().Text())

	if node := doc.Find(sel.Price).First(); node.Length() > 0 {
		p.Price = strings.TrimSpace(node.Text())
	}
	if node := doc.Find(sel.Availability).First(); node.Length() > 0 {
		p.Availability = strings.TrimSpace(node.Text())
	}

	// JSON-LD structured data fills whatever the selectors missed.
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		offers, ok := productOffers(s.Text())
		if !ok {
			return true
		}
		if p.Price == "" {
			p.Price = stringField(offers, "price")
		}
		if p.Availability == "" {
			p.Availability = readableAvailability(stringField(offers, "availability"))
		}
		return false
	})

	return p, nil
}

// productOffers parses a JSON-LD block and returns the offers object of the
// first @type=Product node, if any.
func productOffers(raw string) (map[string]any, bool) {
	var data any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		return nil, false
	}

	nodes, ok := data.([]any)
	if !ok {
		nodes = []any{data}
	}

	for _, node := range nodes {
		obj, ok := node.(map[string]any)
		if !ok || obj["@type"] != "Product" {
			continue
		}
		switch offers := obj["offers"].(type) {
		case map[string]any:
			return offers, true
		case []any:
			if len(offers) > 0 {
				if first, ok := offers[0].(map[string]any); ok {
					return first, true
				}
			}
		}
	}
	return nil, false
}

// stringField reads a JSON field as a string, accepting numbers.
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return ""
	}
}

// readableAvailability turns schema.org availability URIs into plain text.
func readableAvailability(v string) string {
	switch {
	case strings.HasSuffix(v, "/InStock"):
		return "in stock"
	case strings.HasSuffix(v, "/OutOfStock"):
		return "out of stock"
	case strings.HasSuffix(v, "/LimitedAvailability"):
		return "limited availability"
	default:
		return v
	}
}
