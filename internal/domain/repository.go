package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SearchClient defines the interface for the upstream web search index
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) (*SearchResponse, error)
}

// PageFetcher defines the interface for fetching a raw price string from a
// single source URL. Implementations return the price as encountered on the
// page; numeric parsing belongs to Normalization.
type PageFetcher interface {
	FetchPrice(ctx context.Context, url string) (string, error)
}

// SearchResponse is the structured response from the search index.
type SearchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

// OrganicResult is one organic search hit as returned by the index.
type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}
