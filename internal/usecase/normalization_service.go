package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// numericPriceRegex matches the first numeric token in a raw price string:
// digits, optional thousands separators, optional decimal part.
var numericPriceRegex = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)

// NormalizationService converts raw observations into comparable records.
// Observations that failed upstream or carry an unparseable price string are
// dropped, never errored.
type NormalizationService struct{}

// NewNormalizationService creates a new normalization service
func NewNormalizationService() *NormalizationService {
	return &NormalizationService{}
}

// Normalize filters the observations down to parseable, successful price
// reads. Record order follows observation order. Normalizing already-clean
// data yields the same records back.
func (s *NormalizationService) Normalize(observations []domain.RawObservation) *domain.NormalizationResult {
	records := make([]domain.NormalizedRecord, 0, len(observations))

	for _, obs := range observations {
		if !obs.Success {
			continue
		}

		price, ok := ParsePrice(obs.Price)
		if !ok {
			log.Printf("[NORMALIZE] Dropping unparseable price %q from %s", obs.Price, obs.URL)
			continue
		}

		records = append(records, domain.NormalizedRecord{
			ProductName:   obs.ProductName,
			URL:           obs.URL,
			Domain:        domain.SiteFromURL(obs.URL),
			Price:         price,
			OriginalPrice: obs.Price,
		})
	}

	log.Printf("[NORMALIZE] Processed %d observations into %d records", len(observations), len(records))

	return &domain.NormalizationResult{Records: records}
}

// ParsePrice extracts a numeric amount from a raw price string. The first
// numeric token wins; thousands separators are stripped before parsing.
// Strings with no numeric token ("Call for price") and negative amounts
// report ok=false.
func ParsePrice(raw string) (float64, bool) {
	match := numericPriceRegex.FindString(raw)
	if match == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil || value < 0 {
		return 0, false
	}

	return value, true
}
