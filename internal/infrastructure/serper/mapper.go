package serper

import (
	"regexp"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// priceHintRegex matches the first currency-formatted substring in a search
// snippet, e.g. "$1,299.99" or "$45"
var priceHintRegex = regexp.MustCompile(`\$[\d,]+\.?\d*`)

// snippetCommerceKeywords flag results that look commercial even when the
// domain is not in the allow-list
var snippetCommerceKeywords = []string{"price", "buy", "shop", "store", "$"}

// MapCandidates converts organic search results to SourceCandidates,
// preserving upstream rank order. Position falls back to list order when the
// index omits it.
func MapCandidates(resp *domain.SearchResponse) []domain.SourceCandidate {
	if resp == nil {
		return nil
	}

	candidates := make([]domain.SourceCandidate, 0, len(resp.Organic))
	seen := make(map[string]bool)

	for i, result := range resp.Organic {
		if result.Link == "" || seen[result.Link] {
			continue
		}
		seen[result.Link] = true

		position := result.Position
		if position == 0 {
			position = i + 1
		}

		candidate := domain.SourceCandidate{
			Title:    result.Title,
			URL:      result.Link,
			Domain:   domain.SiteFromURL(result.Link),
			Snippet:  result.Snippet,
			Position: position,
		}

		if hint := priceHintRegex.FindString(result.Snippet); hint != "" {
			candidate.PriceHint = hint
		}

		candidates = append(candidates, candidate)
	}

	return candidates
}

// FilterEcommerce keeps candidates whose domain is in the allow-list, plus
// candidates whose snippet mentions commerce keywords. Rank order is preserved.
func FilterEcommerce(candidates []domain.SourceCandidate, allowedDomains []string) []domain.SourceCandidate {
	filtered := make([]domain.SourceCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		if IsEcommerceDomain(candidate.Domain, allowedDomains) {
			filtered = append(filtered, candidate)
			continue
		}

		snippet := strings.ToLower(candidate.Snippet)
		for _, keyword := range snippetCommerceKeywords {
			if strings.Contains(snippet, keyword) {
				filtered = append(filtered, candidate)
				break
			}
		}
	}

	return filtered
}

// IsEcommerceDomain reports whether the domain matches any entry in the
// allow-list (suffix match, so "smile.amazon.com" matches "amazon.com").
func IsEcommerceDomain(candidateDomain string, allowedDomains []string) bool {
	for _, allowed := range allowedDomains {
		if candidateDomain == allowed || strings.HasSuffix(candidateDomain, "."+allowed) {
			return true
		}
	}
	return false
}
