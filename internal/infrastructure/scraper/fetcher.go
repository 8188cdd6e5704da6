package scraper

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricelens/backend/internal/domain"
)

// userAgent mimics a browser to avoid being blocked by retailer sites
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// priceSelectors are tried in order; structured data first, then the class
// names most retailers use for the displayed price.
var priceSelectors = []string{
	`meta[property="product:price:amount"]`,
	`meta[itemprop="price"]`,
	`[itemprop="price"]`,
	`.a-price .a-offscreen`,
	`#priceblock_ourprice`,
	`.price-current`,
	`.product-price`,
	`.sale-price`,
	`.price`,
}

// pricePattern recognizes a currency-formatted amount in element text
var pricePattern = regexp.MustCompile(`[$€£¥]\s?[\d.,]*\d|\d[\d.,]*\s?(?:USD|EUR|GBP)`)

// Fetcher retrieves one page and extracts the advertised price string as
// encountered. Numeric parsing is deliberately left to Normalization.
type Fetcher struct {
	httpClient *http.Client
	maxBody    int64
}

// NewFetcher creates a page fetcher. maxBodyKB caps how much of a page is
// read; timeouts are supplied per call through the context.
func NewFetcher(maxBodyKB int) *Fetcher {
	if maxBodyKB <= 0 {
		maxBodyKB = 1024
	}
	return &Fetcher{
		httpClient: &http.Client{},
		maxBody:    int64(maxBodyKB) * 1024,
	}
}

// FetchPrice fetches the page at pageURL and returns the first recognizable
// price string, e.g. "$1,299.99".
func (f *Fetcher) FetchPrice(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	if price := extractPrice(doc); price != "" {
		return price, nil
	}

	return "", domain.ErrNoPriceFound
}

// extractPrice walks the known price selectors and falls back to scanning
// the page text for a currency-formatted amount.
func extractPrice(doc *goquery.Document) string {
	for _, selector := range priceSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := elementPriceText(s)
			if text == "" {
				return true
			}
			found = text
			return false
		})
		if found != "" {
			return found
		}
	}

	// Last resort: first currency-formatted substring anywhere in the body
	return strings.TrimSpace(pricePattern.FindString(doc.Text()))
}

// elementPriceText returns the price text of a matched element: the content
// attribute for meta tags, the trimmed text otherwise. Text without a digit
// is not a price.
func elementPriceText(s *goquery.Selection) string {
	text := strings.TrimSpace(s.Text())
	if goquery.NodeName(s) == "meta" {
		text = strings.TrimSpace(s.AttrOr("content", ""))
	}
	if text == "" || !strings.ContainsAny(text, "0123456789") {
		return ""
	}
	return text
}
