package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/backend/internal/domain"
)

type fakeDiscoverer struct {
	discoverResult *domain.DiscoveryResult
	discoverErr    error
	siteResult     *domain.SiteDiscoveryResult
	specResult     *domain.SpecificationDiscoveryResult

	lastMaxResults    int
	lastEcommerceOnly bool
	lastTargetSites   []string
}

func (f *fakeDiscoverer) Discover(ctx context.Context, productName string, maxResults int, ecommerceOnly bool) (*domain.DiscoveryResult, error) {
	f.lastMaxResults = maxResults
	f.lastEcommerceOnly = ecommerceOnly
	return f.discoverResult, f.discoverErr
}

func (f *fakeDiscoverer) DiscoverBySite(ctx context.Context, productName string, targetSites []string) (*domain.SiteDiscoveryResult, error) {
	f.lastTargetSites = targetSites
	return f.siteResult, nil
}

func (f *fakeDiscoverer) DiscoverWithSpecifications(ctx context.Context, productName, specifications string, maxResults int) (*domain.SpecificationDiscoveryResult, error) {
	f.lastMaxResults = maxResults
	return f.specResult, nil
}

type fakeExtractor struct {
	result   *domain.ExtractionResult
	lastURLs []string
}

func (f *fakeExtractor) Extract(ctx context.Context, productName string, sourceURLs []string) (*domain.ExtractionResult, error) {
	f.lastURLs = sourceURLs
	if f.result != nil {
		return f.result, nil
	}
	return &domain.ExtractionResult{ProductName: productName, Observations: []domain.RawObservation{}}, nil
}

type fakeNormalizer struct {
	result *domain.NormalizationResult
}

func (f *fakeNormalizer) Normalize(observations []domain.RawObservation) *domain.NormalizationResult {
	if f.result != nil {
		return f.result
	}
	return &domain.NormalizationResult{Records: []domain.NormalizedRecord{}}
}

type fakeComparer struct {
	comparison  *domain.ComparisonResult
	analysis    *domain.PriceAnalysis
	sites       *domain.SiteComparison
	lastRecords []domain.NormalizedRecord
}

func (f *fakeComparer) FindLowestPrice(records []domain.NormalizedRecord) *domain.ComparisonResult {
	f.lastRecords = records
	return f.comparison
}

func (f *fakeComparer) Analyze(productName string, records []domain.NormalizedRecord) *domain.PriceAnalysis {
	f.lastRecords = records
	if f.analysis != nil {
		return f.analysis
	}
	return &domain.PriceAnalysis{ProductName: productName, TotalRecords: len(records)}
}

func (f *fakeComparer) CompareSites(records []domain.NormalizedRecord, siteDomains []string) *domain.SiteComparison {
	f.lastRecords = records
	return f.sites
}

func newTestExecutor() (*Executor, *fakeDiscoverer, *fakeExtractor, *fakeComparer) {
	discoverer := &fakeDiscoverer{}
	extractor := &fakeExtractor{}
	comparer := &fakeComparer{}
	executor := NewExecutor(discoverer, extractor, &fakeNormalizer{}, comparer)
	return executor, discoverer, extractor, comparer
}

func args(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestExecutor_UnknownTool(t *testing.T) {
	executor, _, _, _ := newTestExecutor()

	resp := executor.Execute(context.Background(), Request{Tool: "does_not_exist"})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown tool")
}

func TestExecutor_SearchProducts(t *testing.T) {
	t.Run("dispatches with defaults", func(t *testing.T) {
		executor, discoverer, _, _ := newTestExecutor()
		discoverer.discoverResult = &domain.DiscoveryResult{ProductName: "Widget", Success: true}

		resp := executor.Execute(context.Background(), Request{
			Tool:      "search_products",
			Arguments: args(t, map[string]interface{}{"product_name": "Widget"}),
		})

		require.True(t, resp.Success, "error: %s", resp.Error)
		assert.Equal(t, 10, discoverer.lastMaxResults)
		assert.True(t, discoverer.lastEcommerceOnly)
	})

	t.Run("honors explicit ecommerce_only false", func(t *testing.T) {
		executor, discoverer, _, _ := newTestExecutor()
		discoverer.discoverResult = &domain.DiscoveryResult{Success: true}

		resp := executor.Execute(context.Background(), Request{
			Tool:      "search_products",
			Arguments: args(t, map[string]interface{}{"product_name": "Widget", "ecommerce_only": false, "max_results": 25}),
		})

		require.True(t, resp.Success)
		assert.False(t, discoverer.lastEcommerceOnly)
		assert.Equal(t, 25, discoverer.lastMaxResults)
	})

	t.Run("missing product_name is an envelope failure", func(t *testing.T) {
		executor, _, _, _ := newTestExecutor()

		resp := executor.Execute(context.Background(), Request{
			Tool:      "search_products",
			Arguments: args(t, map[string]interface{}{}),
		})

		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "product_name")
	})

	t.Run("upstream stage failure stays a successful envelope", func(t *testing.T) {
		executor, discoverer, _, _ := newTestExecutor()
		discoverer.discoverResult = &domain.DiscoveryResult{
			ProductName: "Widget",
			Success:     false,
			Error:       "failed to get search results: status 500",
			Candidates:  []domain.SourceCandidate{},
		}

		resp := executor.Execute(context.Background(), Request{
			Tool:      "search_products",
			Arguments: args(t, map[string]interface{}{"product_name": "Widget"}),
		})

		require.True(t, resp.Success)
		result, ok := resp.Data.(*domain.DiscoveryResult)
		require.True(t, ok)
		assert.False(t, result.Success)
	})

	t.Run("malformed arguments are an envelope failure", func(t *testing.T) {
		executor, _, _, _ := newTestExecutor()

		resp := executor.Execute(context.Background(), Request{
			Tool:      "search_products",
			Arguments: json.RawMessage(`{"product_name": 7}`),
		})

		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "invalid arguments")
	})
}

func TestExecutor_ScrapeProductPrice(t *testing.T) {
	executor, _, extractor, _ := newTestExecutor()
	extractor.result = &domain.ExtractionResult{
		ProductName: "Widget",
		Observations: []domain.RawObservation{
			{ProductName: "Widget", URL: "https://a.test", Success: false, Error: "timeout"},
			{ProductName: "Widget", URL: "https://b.test", Success: true, Price: "$19.99"},
		},
	}

	resp := executor.Execute(context.Background(), Request{
		Tool:      "scrape_product_price",
		Arguments: args(t, map[string]interface{}{"product_name": "Widget", "source_urls": []string{"https://a.test", "https://b.test"}}),
	})

	require.True(t, resp.Success)
	result, ok := resp.Data.(*domain.ExtractionResult)
	require.True(t, ok)
	assert.Len(t, result.Observations, 2)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, extractor.lastURLs)
}

func TestExecutor_ProcessScrapedData(t *testing.T) {
	executor, _, _, _ := newTestExecutor()

	resp := executor.Execute(context.Background(), Request{
		Tool: "process_scraped_data",
		Arguments: args(t, map[string]interface{}{
			"observations": []domain.RawObservation{
				{ProductName: "Widget", URL: "https://a.test", Price: "$19.99", Success: true},
			},
		}),
	})

	require.True(t, resp.Success)
	_, ok := resp.Data.(*domain.NormalizationResult)
	assert.True(t, ok)
}

func TestExecutor_FindLowestPrice(t *testing.T) {
	executor, _, _, comparer := newTestExecutor()
	best := domain.NormalizedRecord{URL: "https://b.test", Price: 10}
	comparer.comparison = &domain.ComparisonResult{Best: &best, TotalOptions: 1}

	resp := executor.Execute(context.Background(), Request{
		Tool: "find_lowest_price",
		Arguments: args(t, map[string]interface{}{
			"records": []domain.NormalizedRecord{best},
		}),
	})

	require.True(t, resp.Success)
	result, ok := resp.Data.(*domain.ComparisonResult)
	require.True(t, ok)
	assert.Equal(t, "https://b.test", result.Best.URL)
	assert.Len(t, comparer.lastRecords, 1)
}

func TestExecutor_SearchWithSpecifications(t *testing.T) {
	executor, discoverer, _, _ := newTestExecutor()
	discoverer.specResult = &domain.SpecificationDiscoveryResult{
		ProductName:    "Dell XPS 13",
		Specifications: "16GB RAM",
		Success:        true,
		Ecommerce:      []domain.SourceCandidate{{URL: "https://www.bestbuy.com/site/1"}},
		Informational:  []domain.SourceCandidate{},
	}

	resp := executor.Execute(context.Background(), Request{
		Tool:      "search_product_with_specifications",
		Arguments: args(t, map[string]interface{}{"product_name": "Dell XPS 13", "specifications": "16GB RAM"}),
	})

	require.True(t, resp.Success, "error: %s", resp.Error)
	result, ok := resp.Data.(*domain.SpecificationDiscoveryResult)
	require.True(t, ok)
	assert.Len(t, result.Ecommerce, 1)
	assert.Equal(t, 10, discoverer.lastMaxResults)
}

func TestExecutor_GetProductURLsForComparison(t *testing.T) {
	executor, discoverer, _, _ := newTestExecutor()
	discoverer.siteResult = &domain.SiteDiscoveryResult{
		ProductName: "Widget",
		TargetSites: []string{"amazon.com", "walmart.com"},
		Success:     true,
		URLsBySite: map[string][]domain.SourceCandidate{
			"amazon.com": {{URL: "https://www.amazon.com/dp/1"}},
		},
	}

	resp := executor.Execute(context.Background(), Request{
		Tool:      "get_product_urls_for_comparison",
		Arguments: args(t, map[string]interface{}{"product_name": "Widget", "target_sites": []string{"amazon.com", "walmart.com"}}),
	})

	require.True(t, resp.Success, "error: %s", resp.Error)
	result, ok := resp.Data.(*domain.SiteDiscoveryResult)
	require.True(t, ok)
	assert.Equal(t, []string{"amazon.com", "walmart.com"}, discoverer.lastTargetSites)
	assert.Len(t, result.URLsBySite["amazon.com"], 1)
}

func TestExecutor_ComprehensiveAnalysis(t *testing.T) {
	t.Run("analyzes supplied records", func(t *testing.T) {
		executor, _, _, comparer := newTestExecutor()
		comparer.analysis = &domain.PriceAnalysis{ProductName: "Widget", DataAvailable: true}

		resp := executor.Execute(context.Background(), Request{
			Tool: "comprehensive_price_analysis",
			Arguments: args(t, map[string]interface{}{
				"product_name": "Widget",
				"records": []domain.NormalizedRecord{
					{ProductName: "Widget", URL: "https://a.test", Domain: "a.test", Price: 19.99},
				},
			}),
		})

		require.True(t, resp.Success, "error: %s", resp.Error)
		analysis, ok := resp.Data.(*domain.PriceAnalysis)
		require.True(t, ok)
		assert.True(t, analysis.DataAvailable)
		assert.Len(t, comparer.lastRecords, 1)
	})

	t.Run("missing product_name is an envelope failure", func(t *testing.T) {
		executor, _, _, _ := newTestExecutor()

		resp := executor.Execute(context.Background(), Request{
			Tool:      "comprehensive_price_analysis",
			Arguments: json.RawMessage(`{"records": []}`),
		})

		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "product_name")
	})
}

func TestExecutor_CompareSpecificSites(t *testing.T) {
	t.Run("compares supplied records across sites", func(t *testing.T) {
		executor, _, _, comparer := newTestExecutor()
		comparer.sites = &domain.SiteComparison{BestSite: "amazon.com", SitesFound: 2}

		resp := executor.Execute(context.Background(), Request{
			Tool: "compare_specific_sites",
			Arguments: args(t, map[string]interface{}{
				"records": []domain.NormalizedRecord{
					{URL: "https://www.amazon.com/dp/1", Domain: "amazon.com", Price: 22.49},
					{URL: "https://www.walmart.com/ip/1", Domain: "walmart.com", Price: 24.99},
				},
				"site_domains": []string{"amazon.com", "walmart.com"},
			}),
		})

		require.True(t, resp.Success, "error: %s", resp.Error)
		result, ok := resp.Data.(*domain.SiteComparison)
		require.True(t, ok)
		assert.Equal(t, "amazon.com", result.BestSite)
		assert.Len(t, comparer.lastRecords, 2)
	})

	t.Run("missing site_domains is an envelope failure", func(t *testing.T) {
		executor, _, _, _ := newTestExecutor()

		resp := executor.Execute(context.Background(), Request{
			Tool:      "compare_specific_sites",
			Arguments: json.RawMessage(`{"records": []}`),
		})

		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "site_domains")
	})
}

func TestExecutor_PanicBecomesFailure(t *testing.T) {
	// nil comparison service forces a nil-pointer panic inside dispatch
	executor := NewExecutor(&fakeDiscoverer{}, &fakeExtractor{}, &fakeNormalizer{}, nil)

	resp := executor.Execute(context.Background(), Request{
		Tool:      "find_lowest_price",
		Arguments: json.RawMessage(`{"records": []}`),
	})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "internal error")
}

func TestDefinitions(t *testing.T) {
	definitions := Definitions()
	require.Len(t, definitions, 8)

	seen := make(map[string]bool)
	for _, def := range definitions {
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.False(t, seen[def.Name], "duplicate tool name %q", def.Name)
		seen[def.Name] = true

		var schema map[string]interface{}
		require.NoError(t, json.Unmarshal(def.Parameters, &schema), "schema for %s is not valid JSON", def.Name)
		assert.Equal(t, "object", schema["type"])
	}
}
