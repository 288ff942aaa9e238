// Package urlsource supplies the URL list for a run: read from a file,
// or synthesized when no file is given.
package urlsource

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
)

// categories are typical storefront product sections used for synthetic URLs.
var categories = []string{
	"running", "training", "tennis", "sportsstyle",
	"volleyball", "track-and-field", "walking",
	"basketball", "football", "golf",
}

// productStems are plausible product-id prefixes; a numeric suffix and a
// three-digit color code complete each id.
var productStems = []string{
	"1011A", "1011B", "1012A", "1012B", "1013A",
	"1071A", "1071B", "1072A", "1072B", "1073A",
	"1081A", "1081B", "1082A", "1082B", "1083A",
	"1091A", "1091B", "1092A", "1092B", "1093A",
}

// FromFile reads one URL per line, ignoring blank lines and # comments.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening URL list: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return urls, nil
}

// Synthesize generates count candidate product-page URLs under baseURL.
// The paths follow the storefront's product URL layouts; many of them will
// 404, which is exactly what an existence probe wants to find out.
func Synthesize(baseURL string, count int) []string {
	return synthesize(baseURL, count, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func synthesize(baseURL string, count int, rng *rand.Rand) []string {
	baseURL = strings.TrimRight(baseURL, "/")

	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		category := categories[rng.Intn(len(categories))]
		productID := fmt.Sprintf("%s%d", productStems[rng.Intn(len(productStems))], 100+rng.Intn(900))
		color := fmt.Sprintf("%d", 100+rng.Intn(900))

		layouts := []string{
			fmt.Sprintf("%s/jp/ja-jp/%s/p/%s-%s.html", baseURL, category, productID, color),
			fmt.Sprintf("%s/jp/ja-jp/%s/products/%s-%s.html", baseURL, category, productID, color),
			fmt.Sprintf("%s/jp/ja-jp/sale/%s/p/%s-%s.html", baseURL, category, productID, color),
		}
		urls = append(urls, layouts[rng.Intn(len(layouts))])
	}
	return urls
}

// Normalize makes a candidate URL absolute against baseURL.
func Normalize(rawURL, baseURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(rawURL, "/") {
		return baseURL + rawURL
	}
	return baseURL + "/" + rawURL
}
