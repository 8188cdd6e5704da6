package domain

import "time"

// SourceCandidate is a discovered source location that may advertise the
// product. Position preserves the upstream search rank (relevance order).
type SourceCandidate struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Domain    string `json:"domain"`
	Snippet   string `json:"snippet"`
	Position  int    `json:"position"`
	PriceHint string `json:"priceHint,omitempty"` // first currency-formatted substring in the snippet, if any
}

// RawObservation is one attempted price read from one source location.
// Extraction produces exactly one per submitted URL, success or not.
type RawObservation struct {
	ProductName string `json:"productName"`
	URL         string `json:"url"`
	Price       string `json:"price,omitempty"` // raw string as encountered, e.g. "$1,299.99"
	Error       string `json:"error,omitempty"`
	Success     bool   `json:"success"`
}

// NormalizedRecord is a successfully parsed, comparable price entry.
// The original raw string is retained for audit.
type NormalizedRecord struct {
	ProductName   string  `json:"productName"`
	URL           string  `json:"url"`
	Domain        string  `json:"domain"`
	Price         float64 `json:"price"`
	OriginalPrice string  `json:"originalPrice"`
}

// ComparisonResult holds the minimum-price record plus the full ranked set.
// Best is nil when there were no comparable records; that is a normal
// terminal outcome, not an error.
type ComparisonResult struct {
	Best           *NormalizedRecord  `json:"best"`
	Ranked         []NormalizedRecord `json:"ranked"`
	Savings        float64            `json:"savings"`
	SavingsPercent float64            `json:"savingsPercent"`
	TotalOptions   int                `json:"totalOptions"`
	Message        string             `json:"message,omitempty"`
}

// PriceStatistics summarizes the price distribution across records.
type PriceStatistics struct {
	LowestPrice       float64 `json:"lowestPrice"`
	HighestPrice      float64 `json:"highestPrice"`
	AveragePrice      float64 `json:"averagePrice"`
	MedianPrice       float64 `json:"medianPrice"`
	PriceRange        float64 `json:"priceRange"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// PriceAnalysis is the comprehensive comparison output: statistics,
// per-domain trends, and purchasing recommendations.
type PriceAnalysis struct {
	ProductName       string             `json:"productName"`
	AnalysisTimestamp time.Time          `json:"analysisTimestamp"`
	TotalRecords      int                `json:"totalRecords"`
	Statistics        PriceStatistics    `json:"statistics"`
	BestDeal          *NormalizedRecord  `json:"bestDeal"`
	WorstDeal         *NormalizedRecord  `json:"worstDeal"`
	DomainAverages    map[string]float64 `json:"domainAverages,omitempty"`
	CheapestSite      string             `json:"cheapestSite,omitempty"`
	MostExpensiveSite string             `json:"mostExpensiveSite,omitempty"`
	PotentialSavings  float64            `json:"potentialSavings"`
	Recommendations   []string           `json:"recommendations,omitempty"`
	DataAvailable     bool               `json:"dataAvailable"`
	Message           string             `json:"message,omitempty"`
}

// SitePrice is the best price found for one requested site.
type SitePrice struct {
	Record         NormalizedRecord `json:"record"`
	Difference     float64          `json:"difference"`     // vs the cheapest requested site
	PercentageMore float64          `json:"percentageMore"` // vs the cheapest requested site
}

// SiteComparison compares prices between a requested set of site domains.
type SiteComparison struct {
	RequestedSites []string             `json:"requestedSites"`
	SitePrices     map[string]SitePrice `json:"sitePrices"`
	BestSite       string               `json:"bestSite,omitempty"`
	SitesFound     int                  `json:"sitesFound"`
	SitesMissing   []string             `json:"sitesMissing,omitempty"`
	Message        string               `json:"message,omitempty"`
}

// DiscoveryResult is the Discovery stage output for a flat product search.
// Success is the stage-level flag: an upstream search failure sets it to
// false with a descriptive error instead of aborting the pipeline.
type DiscoveryResult struct {
	ProductName  string            `json:"productName"`
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
	QueryUsed    string            `json:"queryUsed,omitempty"`
	TotalResults int               `json:"totalResults"`
	Candidates   []SourceCandidate `json:"candidates"`
}

// SiteDiscoveryResult groups discovered URLs by target site. Sites that
// yielded no hits are omitted from the map.
type SiteDiscoveryResult struct {
	ProductName string                       `json:"productName"`
	TargetSites []string                     `json:"targetSites"`
	Success     bool                         `json:"success"`
	Error       string                       `json:"error,omitempty"`
	QueryUsed   string                       `json:"queryUsed,omitempty"`
	TotalURLs   int                          `json:"totalUrls"`
	URLsBySite  map[string][]SourceCandidate `json:"urlsBySite"`
}

// SpecificationDiscoveryResult splits search hits into e-commerce and
// informational groups for specification-qualified searches.
type SpecificationDiscoveryResult struct {
	ProductName    string            `json:"productName"`
	Specifications string            `json:"specifications,omitempty"`
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	QueryUsed      string            `json:"queryUsed,omitempty"`
	TotalResults   int               `json:"totalResults"`
	Ecommerce      []SourceCandidate `json:"ecommerceResults"`
	Informational  []SourceCandidate `json:"informationalResults"`
}

// ExtractionResult is the Extraction stage output: one observation per
// submitted URL, in submission order.
type ExtractionResult struct {
	ProductName  string           `json:"productName"`
	Observations []RawObservation `json:"observations"`
}

// NormalizationResult is the Normalization stage output. Records may be
// fewer than the observations that produced them.
type NormalizationResult struct {
	Records []NormalizedRecord `json:"records"`
}
