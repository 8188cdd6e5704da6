package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	specialCharsRegex    = regexp.MustCompile(`[#%+@!^*()=\[\]{}<>|\\~` + "`" + `]`)
)

// purchaseIntentKeywords bias the search index toward pages that sell the
// product rather than review or discuss it
const purchaseIntentKeywords = "price buy shop"

// queryNoiseWords are retail/marketing terms that add noise to a product search
var queryNoiseWords = map[string]bool{
	"value": true, "family": true, "bonus": true, "new": true,
	"improved": true, "premium": true, "special": true, "size": true,
	"pack": true, "edition": true, "deal": true, "sale": true,
}

// QueryBuilder assembles search queries for the Discovery stage
type QueryBuilder struct{}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// ProductQuery builds the purchase-intent query for a flat product search
func (b *QueryBuilder) ProductQuery(productName string) string {
	return cleanProductName(productName) + " " + purchaseIntentKeywords
}

// SpecificationQuery builds a query qualified with extra specifications
// (e.g. "16GB RAM", "black color")
func (b *QueryBuilder) SpecificationQuery(productName, specifications string) string {
	name := cleanProductName(productName)
	if specifications == "" {
		return name + " " + purchaseIntentKeywords
	}
	return name + " " + strings.TrimSpace(specifications) + " " + purchaseIntentKeywords
}

// SiteQuery builds a query restricted to the given site domains
func (b *QueryBuilder) SiteQuery(productName string, targetSites []string) string {
	return fmt.Sprintf("%s site:(%s)", cleanProductName(productName), strings.Join(targetSites, " OR site:"))
}

// CacheKey builds a normalized cache key from its parts.
// Format: "discovery:{part}:{part}:..."
func (b *QueryBuilder) CacheKey(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		normalized[i] = normalizeForCacheKey(part)
	}
	return "discovery:" + strings.Join(normalized, ":")
}

// cleanProductName strips retail noise and characters that upset the search
// API, then collapses whitespace. Long names are cut at a word boundary.
func cleanProductName(name string) string {
	name = strings.ReplaceAll(name, "&", " and ")
	name = specialCharsRegex.ReplaceAllString(name, " ")

	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if queryNoiseWords[strings.ToLower(strings.Trim(word, ",.!?;:-'\""))] {
			continue
		}
		kept = append(kept, word)
	}
	name = strings.Join(kept, " ")

	if len(name) > 100 {
		name = name[:100]
		if lastSpace := strings.LastIndex(name, " "); lastSpace > 50 {
			name = name[:lastSpace]
		}
	}

	return strings.TrimSpace(name)
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
