package usecase

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// ComparisonService ranks normalized records and produces purchasing
// guidance. Empty input is a normal terminal outcome reported in the
// result, not an error.
type ComparisonService struct{}

// NewComparisonService creates a new comparison service
func NewComparisonService() *ComparisonService {
	return &ComparisonService{}
}

// FindLowestPrice picks the minimum-price record and ranks the full set
// ascending. Ties go to the record appearing first in the input. Savings is
// the spread between the most and least expensive record of the same set.
func (s *ComparisonService) FindLowestPrice(records []domain.NormalizedRecord) *domain.ComparisonResult {
	if len(records) == 0 {
		return &domain.ComparisonResult{
			Ranked:  []domain.NormalizedRecord{},
			Message: "no valid price data found",
		}
	}

	bestIdx := 0
	worstIdx := 0
	for i, record := range records {
		if record.Price < records[bestIdx].Price {
			bestIdx = i
		}
		if record.Price > records[worstIdx].Price {
			worstIdx = i
		}
	}
	best := records[bestIdx]

	ranked := make([]domain.NormalizedRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price < ranked[j].Price
	})

	savings := round2(records[worstIdx].Price - best.Price)
	savingsPercent := 0.0
	if records[worstIdx].Price > 0 {
		savingsPercent = round2(savings / records[worstIdx].Price * 100)
	}

	log.Printf("[COMPARE] Best price %.2f at %s across %d options", best.Price, best.Domain, len(records))

	return &domain.ComparisonResult{
		Best:           &best,
		Ranked:         ranked,
		Savings:        savings,
		SavingsPercent: savingsPercent,
		TotalOptions:   len(records),
	}
}

// Analyze produces the comprehensive price analysis: distribution
// statistics, per-domain averages, and recommendations.
func (s *ComparisonService) Analyze(productName string, records []domain.NormalizedRecord) *domain.PriceAnalysis {
	analysis := &domain.PriceAnalysis{
		ProductName:       productName,
		AnalysisTimestamp: time.Now().UTC(),
		TotalRecords:      len(records),
	}

	if len(records) == 0 {
		analysis.Message = "no valid price data found"
		return analysis
	}

	analysis.DataAvailable = true

	prices := make([]float64, len(records))
	for i, record := range records {
		prices[i] = record.Price
	}

	stats := computeStatistics(prices)
	analysis.Statistics = stats

	bestIdx := 0
	worstIdx := 0
	for i, record := range records {
		if record.Price < records[bestIdx].Price {
			bestIdx = i
		}
		if record.Price > records[worstIdx].Price {
			worstIdx = i
		}
	}
	best := records[bestIdx]
	worst := records[worstIdx]
	analysis.BestDeal = &best
	analysis.WorstDeal = &worst
	analysis.PotentialSavings = round2(worst.Price - best.Price)

	averages, domainOrder := domainAverages(records)
	analysis.DomainAverages = averages

	cheapestSite := ""
	mostExpensiveSite := ""
	for _, d := range domainOrder {
		if cheapestSite == "" || averages[d] < averages[cheapestSite] {
			cheapestSite = d
		}
		if mostExpensiveSite == "" || averages[d] > averages[mostExpensiveSite] {
			mostExpensiveSite = d
		}
	}
	analysis.CheapestSite = cheapestSite
	analysis.MostExpensiveSite = mostExpensiveSite

	analysis.Recommendations = buildRecommendations(best, stats, cheapestSite, analysis.PotentialSavings)

	log.Printf("[COMPARE] Analyzed %d records for %q, best %.2f at %s", len(records), productName, best.Price, best.Domain)

	return analysis
}

// CompareSites reports the best price per requested site domain and the
// spread against the cheapest of them. Sites with no matching record are
// listed as missing. Matching is substring-based so "amazon" covers
// "amazon.com" and "amazon.co.uk".
func (s *ComparisonService) CompareSites(records []domain.NormalizedRecord, siteDomains []string) *domain.SiteComparison {
	comparison := &domain.SiteComparison{
		RequestedSites: siteDomains,
		SitePrices:     map[string]domain.SitePrice{},
	}

	if len(siteDomains) == 0 {
		comparison.Message = "no sites requested"
		return comparison
	}

	bestBySite := make(map[string]domain.NormalizedRecord)
	for _, site := range siteDomains {
		needle := strings.ToLower(site)
		for _, record := range records {
			if !strings.Contains(strings.ToLower(record.Domain), needle) {
				continue
			}
			current, seen := bestBySite[site]
			if !seen || record.Price < current.Price {
				bestBySite[site] = record
			}
		}
	}

	bestSite := ""
	var missing []string
	for _, site := range siteDomains {
		record, found := bestBySite[site]
		if !found {
			missing = append(missing, site)
			continue
		}
		if bestSite == "" || record.Price < bestBySite[bestSite].Price {
			bestSite = site
		}
	}

	if bestSite == "" {
		comparison.SitesMissing = missing
		comparison.Message = "no price data found for any requested site"
		return comparison
	}

	lowest := bestBySite[bestSite].Price
	for site, record := range bestBySite {
		difference := round2(record.Price - lowest)
		percentageMore := 0.0
		if lowest > 0 {
			percentageMore = round2(difference / lowest * 100)
		}
		comparison.SitePrices[site] = domain.SitePrice{
			Record:         record,
			Difference:     difference,
			PercentageMore: percentageMore,
		}
	}

	comparison.BestSite = bestSite
	comparison.SitesFound = len(bestBySite)
	comparison.SitesMissing = missing

	log.Printf("[COMPARE] Compared %d sites, best is %s at %.2f", len(bestBySite), bestSite, lowest)

	return comparison
}

// computeStatistics summarizes the price distribution. Standard deviation is
// the sample deviation and is 0 for a single price.
func computeStatistics(prices []float64) domain.PriceStatistics {
	lowest := prices[0]
	highest := prices[0]
	sum := 0.0
	for _, p := range prices {
		if p < lowest {
			lowest = p
		}
		if p > highest {
			highest = p
		}
		sum += p
	}
	mean := sum / float64(len(prices))

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	stddev := 0.0
	if len(prices) > 1 {
		sumSquares := 0.0
		for _, p := range prices {
			diff := p - mean
			sumSquares += diff * diff
		}
		stddev = math.Sqrt(sumSquares / float64(len(prices)-1))
	}

	return domain.PriceStatistics{
		LowestPrice:       round2(lowest),
		HighestPrice:      round2(highest),
		AveragePrice:      round2(mean),
		MedianPrice:       round2(median),
		PriceRange:        round2(highest - lowest),
		StandardDeviation: round2(stddev),
	}
}

// domainAverages returns the mean price per domain plus the domains in
// first-appearance order, so downstream min/max picks are deterministic.
func domainAverages(records []domain.NormalizedRecord) (map[string]float64, []string) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string

	for _, record := range records {
		if _, seen := counts[record.Domain]; !seen {
			order = append(order, record.Domain)
		}
		sums[record.Domain] += record.Price
		counts[record.Domain]++
	}

	averages := make(map[string]float64, len(order))
	for _, d := range order {
		averages[d] = round2(sums[d] / float64(counts[d]))
	}

	return averages, order
}

// buildRecommendations assembles the human-readable guidance lines
func buildRecommendations(best domain.NormalizedRecord, stats domain.PriceStatistics, cheapestSite string, potentialSavings float64) []string {
	recommendations := []string{
		fmt.Sprintf("Best deal: $%.2f at %s", best.Price, best.Domain),
	}

	if potentialSavings > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("You can save $%.2f by choosing the best deal over the most expensive option", potentialSavings))
	}

	if stats.AveragePrice > 0 && stats.StandardDeviation/stats.AveragePrice > 0.2 {
		recommendations = append(recommendations,
			"Prices vary significantly across sellers, comparing before buying is worthwhile")
	}

	if cheapestSite != "" && cheapestSite != best.Domain {
		recommendations = append(recommendations,
			fmt.Sprintf("%s has the lowest average price overall", cheapestSite))
	}

	return recommendations
}

// round2 rounds to 2 decimal places for currency-style output
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
