package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/pricelens/backend/internal/domain"
)

// defaultMaxResults applies when an invocation omits max_results
const defaultMaxResults = 10

// Discoverer is the Discovery stage surface the executor dispatches to
type Discoverer interface {
	Discover(ctx context.Context, productName string, maxResults int, ecommerceOnly bool) (*domain.DiscoveryResult, error)
	DiscoverBySite(ctx context.Context, productName string, targetSites []string) (*domain.SiteDiscoveryResult, error)
	DiscoverWithSpecifications(ctx context.Context, productName, specifications string, maxResults int) (*domain.SpecificationDiscoveryResult, error)
}

// Extractor is the Extraction stage surface
type Extractor interface {
	Extract(ctx context.Context, productName string, sourceURLs []string) (*domain.ExtractionResult, error)
}

// Normalizer is the Normalization stage surface
type Normalizer interface {
	Normalize(observations []domain.RawObservation) *domain.NormalizationResult
}

// Comparer is the Comparison stage surface
type Comparer interface {
	FindLowestPrice(records []domain.NormalizedRecord) *domain.ComparisonResult
	Analyze(productName string, records []domain.NormalizedRecord) *domain.PriceAnalysis
	CompareSites(records []domain.NormalizedRecord, siteDomains []string) *domain.SiteComparison
}

// Executor dispatches invocation requests to the pipeline stages. Every
// invocation returns a Response; faults (bad arguments, unknown tool,
// panics) become failure envelopes rather than transport errors.
type Executor struct {
	discovery  Discoverer
	extraction Extractor
	normalizer Normalizer
	comparison Comparer
}

// NewExecutor creates an executor over the four pipeline stages
func NewExecutor(discovery Discoverer, extraction Extractor, normalizer Normalizer, comparison Comparer) *Executor {
	return &Executor{
		discovery:  discovery,
		extraction: extraction,
		normalizer: normalizer,
		comparison: comparison,
	}
}

type searchProductsArgs struct {
	ProductName   string `json:"product_name"`
	MaxResults    int    `json:"max_results"`
	EcommerceOnly *bool  `json:"ecommerce_only"`
}

type searchWithSpecificationsArgs struct {
	ProductName    string `json:"product_name"`
	Specifications string `json:"specifications"`
	MaxResults     int    `json:"max_results"`
}

type urlsForComparisonArgs struct {
	ProductName string   `json:"product_name"`
	TargetSites []string `json:"target_sites"`
}

type scrapePriceArgs struct {
	ProductName string   `json:"product_name"`
	SourceURLs  []string `json:"source_urls"`
}

type processDataArgs struct {
	Observations []domain.RawObservation `json:"observations"`
}

type findLowestPriceArgs struct {
	Records []domain.NormalizedRecord `json:"records"`
}

type comprehensiveAnalysisArgs struct {
	ProductName string                    `json:"product_name"`
	Records     []domain.NormalizedRecord `json:"records"`
}

type compareSitesArgs struct {
	Records     []domain.NormalizedRecord `json:"records"`
	SiteDomains []string                  `json:"site_domains"`
}

// Execute dispatches one invocation. A panic anywhere below becomes a
// failure envelope so one bad invocation cannot take the server down.
func (e *Executor) Execute(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TOOL] Panic executing %q: %v", req.Tool, r)
			resp = failure(fmt.Sprintf("internal error executing tool %q", req.Tool))
		}
	}()

	log.Printf("[TOOL] Executing %q", req.Tool)

	switch req.Tool {
	case "search_products":
		return e.searchProducts(ctx, req.Arguments)
	case "search_product_with_specifications":
		return e.searchWithSpecifications(ctx, req.Arguments)
	case "get_product_urls_for_comparison":
		return e.urlsForComparison(ctx, req.Arguments)
	case "scrape_product_price":
		return e.scrapePrice(ctx, req.Arguments)
	case "process_scraped_data":
		return e.processData(req.Arguments)
	case "find_lowest_price":
		return e.findLowestPrice(req.Arguments)
	case "comprehensive_price_analysis":
		return e.comprehensiveAnalysis(req.Arguments)
	case "compare_specific_sites":
		return e.compareSites(req.Arguments)
	default:
		return failure(fmt.Sprintf("unknown tool: %q", req.Tool))
	}
}

func (e *Executor) searchProducts(ctx context.Context, raw json.RawMessage) Response {
	var args searchProductsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.ProductName == "" {
		return failure("product_name is required")
	}
	if args.MaxResults <= 0 {
		args.MaxResults = defaultMaxResults
	}
	ecommerceOnly := true
	if args.EcommerceOnly != nil {
		ecommerceOnly = *args.EcommerceOnly
	}

	result, err := e.discovery.Discover(ctx, args.ProductName, args.MaxResults, ecommerceOnly)
	if err != nil {
		return failure(err.Error())
	}
	return success(result)
}

func (e *Executor) searchWithSpecifications(ctx context.Context, raw json.RawMessage) Response {
	var args searchWithSpecificationsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.ProductName == "" {
		return failure("product_name is required")
	}
	if args.MaxResults <= 0 {
		args.MaxResults = defaultMaxResults
	}

	result, err := e.discovery.DiscoverWithSpecifications(ctx, args.ProductName, args.Specifications, args.MaxResults)
	if err != nil {
		return failure(err.Error())
	}
	return success(result)
}

func (e *Executor) urlsForComparison(ctx context.Context, raw json.RawMessage) Response {
	var args urlsForComparisonArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.ProductName == "" {
		return failure("product_name is required")
	}

	result, err := e.discovery.DiscoverBySite(ctx, args.ProductName, args.TargetSites)
	if err != nil {
		return failure(err.Error())
	}
	return success(result)
}

func (e *Executor) scrapePrice(ctx context.Context, raw json.RawMessage) Response {
	var args scrapePriceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.ProductName == "" {
		return failure("product_name is required")
	}

	result, err := e.extraction.Extract(ctx, args.ProductName, args.SourceURLs)
	if err != nil {
		return failure(err.Error())
	}
	return success(result)
}

func (e *Executor) processData(raw json.RawMessage) Response {
	var args processDataArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	return success(e.normalizer.Normalize(args.Observations))
}

func (e *Executor) findLowestPrice(raw json.RawMessage) Response {
	var args findLowestPriceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}

	return success(e.comparison.FindLowestPrice(args.Records))
}

// comprehensiveAnalysis runs the Comparison stage over already-normalized
// records. An empty set yields a no-data analysis, not an envelope failure.
func (e *Executor) comprehensiveAnalysis(raw json.RawMessage) Response {
	var args comprehensiveAnalysisArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.ProductName == "" {
		return failure("product_name is required")
	}

	return success(e.comparison.Analyze(args.ProductName, args.Records))
}

func (e *Executor) compareSites(raw json.RawMessage) Response {
	var args compareSitesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if len(args.SiteDomains) == 0 {
		return failure("site_domains is required")
	}

	return success(e.comparison.CompareSites(args.Records, args.SiteDomains))
}

// decodeArgs decodes the raw argument payload, tolerating an absent block
// for tools whose arguments are all optional
func decodeArgs(raw json.RawMessage, into interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func failure(message string) Response {
	return Response{Success: false, Error: message}
}
