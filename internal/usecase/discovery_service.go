package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/serper"
)

// siteQueryResults is how many hits a site-restricted query asks for; the
// results are spread across the requested sites.
const siteQueryResults = 20

// DiscoveryServiceConfig holds configuration for the discovery service
type DiscoveryServiceConfig struct {
	MaxResultsCap    int
	EcommerceDomains []string
	DefaultSites     []string
	CacheTTL         time.Duration
}

// DiscoveryService finds candidate source locations for a product.
// Flow: check cache -> query search index -> map/filter -> cache -> return.
type DiscoveryService struct {
	search           domain.SearchClient
	cache            domain.CacheRepository
	queries          *QueryBuilder
	maxResultsCap    int
	ecommerceDomains []string
	defaultSites     []string
	cacheTTL         time.Duration
}

// NewDiscoveryService creates a new discovery service with dependencies
func NewDiscoveryService(
	search domain.SearchClient,
	cache domain.CacheRepository,
	config DiscoveryServiceConfig,
) *DiscoveryService {
	maxResultsCap := config.MaxResultsCap
	if maxResultsCap <= 0 {
		maxResultsCap = 50
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &DiscoveryService{
		search:           search,
		cache:            cache,
		queries:          NewQueryBuilder(),
		maxResultsCap:    maxResultsCap,
		ecommerceDomains: config.EcommerceDomains,
		defaultSites:     config.DefaultSites,
		cacheTTL:         cacheTTL,
	}
}

// Discover searches for source locations advertising the product.
// An upstream search failure is reported inside the result (success=false,
// empty candidates) so the pipeline can proceed; only invalid input is
// returned as an error.
func (s *DiscoveryService) Discover(ctx context.Context, productName string, maxResults int, ecommerceOnly bool) (*domain.DiscoveryResult, error) {
	if productName == "" || maxResults <= 0 {
		return nil, domain.ErrInvalidRequest
	}
	if maxResults > s.maxResultsCap {
		maxResults = s.maxResultsCap
	}

	query := s.queries.ProductQuery(productName)
	cacheKey := s.queries.CacheKey(query, strconv.Itoa(maxResults), strconv.FormatBool(ecommerceOnly))

	if cached := s.resultFromCache(ctx, cacheKey); cached != nil {
		log.Printf("[DISCOVERY] Cache hit for %q", productName)
		return cached, nil
	}

	log.Printf("[DISCOVERY] Searching for product: %q", productName)

	resp, err := s.search.Search(ctx, query, maxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[DISCOVERY] Search failed for %q: %v", productName, err)
		return &domain.DiscoveryResult{
			ProductName: productName,
			Success:     false,
			Error:       fmt.Sprintf("failed to get search results: %v", err),
			QueryUsed:   query,
			Candidates:  []domain.SourceCandidate{},
		}, nil
	}

	candidates := serper.MapCandidates(resp)
	if ecommerceOnly {
		candidates = serper.FilterEcommerce(candidates, s.ecommerceDomains)
	}
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	result := &domain.DiscoveryResult{
		ProductName:  productName,
		Success:      true,
		QueryUsed:    query,
		TotalResults: len(candidates),
		Candidates:   candidates,
	}

	if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
		log.Printf("[DISCOVERY] Failed to cache result for %q: %v", productName, err)
	}

	log.Printf("[DISCOVERY] Found %d candidates for %q", len(candidates), productName)
	return result, nil
}

// DiscoverBySite restricts discovery to the given site domains and groups
// the candidates by site. Sites with zero hits are omitted from the map.
func (s *DiscoveryService) DiscoverBySite(ctx context.Context, productName string, targetSites []string) (*domain.SiteDiscoveryResult, error) {
	if productName == "" {
		return nil, domain.ErrInvalidRequest
	}
	if len(targetSites) == 0 {
		targetSites = s.defaultSites
	}

	query := s.queries.SiteQuery(productName, targetSites)

	log.Printf("[DISCOVERY] Getting comparison URLs for %q across %d sites", productName, len(targetSites))

	resp, err := s.search.Search(ctx, query, siteQueryResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &domain.SiteDiscoveryResult{
			ProductName: productName,
			TargetSites: targetSites,
			Success:     false,
			Error:       fmt.Sprintf("failed to get search results: %v", err),
			QueryUsed:   query,
			URLsBySite:  map[string][]domain.SourceCandidate{},
		}, nil
	}

	candidates := serper.FilterEcommerce(serper.MapCandidates(resp), s.ecommerceDomains)

	urlsBySite := make(map[string][]domain.SourceCandidate)
	totalURLs := 0
	for _, candidate := range candidates {
		for _, site := range targetSites {
			if serper.IsEcommerceDomain(candidate.Domain, []string{site}) {
				urlsBySite[site] = append(urlsBySite[site], candidate)
				totalURLs++
				break
			}
		}
	}

	log.Printf("[DISCOVERY] Found %d URLs across %d sites", totalURLs, len(urlsBySite))

	return &domain.SiteDiscoveryResult{
		ProductName: productName,
		TargetSites: targetSites,
		Success:     true,
		QueryUsed:   query,
		TotalURLs:   totalURLs,
		URLsBySite:  urlsBySite,
	}, nil
}

// DiscoverWithSpecifications searches with extra qualifying specifications
// and splits the hits into e-commerce and informational groups.
func (s *DiscoveryService) DiscoverWithSpecifications(ctx context.Context, productName, specifications string, maxResults int) (*domain.SpecificationDiscoveryResult, error) {
	if productName == "" || maxResults <= 0 {
		return nil, domain.ErrInvalidRequest
	}
	if maxResults > s.maxResultsCap {
		maxResults = s.maxResultsCap
	}

	query := s.queries.SpecificationQuery(productName, specifications)

	log.Printf("[DISCOVERY] Searching for %q with specifications: %q", productName, specifications)

	resp, err := s.search.Search(ctx, query, maxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &domain.SpecificationDiscoveryResult{
			ProductName:    productName,
			Specifications: specifications,
			Success:        false,
			Error:          fmt.Sprintf("failed to get search results: %v", err),
			QueryUsed:      query,
			Ecommerce:      []domain.SourceCandidate{},
			Informational:  []domain.SourceCandidate{},
		}, nil
	}

	candidates := serper.MapCandidates(resp)

	ecommerce := make([]domain.SourceCandidate, 0, len(candidates))
	informational := make([]domain.SourceCandidate, 0)
	for _, candidate := range candidates {
		if serper.IsEcommerceDomain(candidate.Domain, s.ecommerceDomains) {
			ecommerce = append(ecommerce, candidate)
		} else {
			informational = append(informational, candidate)
		}
	}

	log.Printf("[DISCOVERY] Found %d e-commerce and %d informational results", len(ecommerce), len(informational))

	return &domain.SpecificationDiscoveryResult{
		ProductName:    productName,
		Specifications: specifications,
		Success:        true,
		QueryUsed:      query,
		TotalResults:   len(candidates),
		Ecommerce:      ecommerce,
		Informational:  informational,
	}, nil
}

// resultFromCache retrieves a discovery result from cache. The cache stores
// the JSON shape, so the value is re-marshalled into the typed result.
func (s *DiscoveryService) resultFromCache(ctx context.Context, key string) *domain.DiscoveryResult {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}

	var result domain.DiscoveryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}

	return &result
}
