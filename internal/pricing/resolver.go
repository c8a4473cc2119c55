package pricing

import (
	"time"

	"hunter-market/internal/models"
)

// MinHistoryConfidence is the cutoff below which an external search result
// is excluded from the assembled price history.
const MinHistoryConfidence = 0.6

// PeerSource tags price-history entries backed by an existing campus listing.
const PeerSource = "교내거래"

// Classification is the structured output of the generative classification
// call. FromFallback distinguishes a genuine zero-confidence analysis from a
// failed call that was replaced by the safe default.
type Classification struct {
	Category       string  `json:"category"`
	Condition      string  `json:"condition"`
	Price          int     `json:"price"`
	EstimatedPrice int     `json:"estimated_price"`
	Confidence     float64 `json:"confidence"`
	FromFallback   bool    `json:"-"`
}

// FallbackClassification is what the pipeline uses when the classification
// service is unreachable or returns garbage.
func FallbackClassification() Classification {
	return Classification{
		Category:     models.CategoryOther,
		Condition:    models.ConditionUnknown,
		FromFallback: true,
	}
}

// SearchResult is one cleaned shopping-search hit, ranked by relevance.
type SearchResult struct {
	Title      string
	Price      int
	Condition  string
	Mall       string
	URL        string
	Confidence float64
}

// DecidePrice applies the fixed priority order for the final listing price:
// classification price, classification estimate, top search result, mean of
// comparable campus listings, zero.
func DecidePrice(cls Classification, results []SearchResult, comparables []models.Hunt) int {
	if cls.Price > 0 {
		return cls.Price
	}
	if cls.EstimatedPrice > 0 {
		return cls.EstimatedPrice
	}
	if len(results) > 0 && results[0].Price > 0 {
		return results[0].Price
	}
	if len(comparables) > 0 {
		sum := 0
		for _, h := range comparables {
			sum += h.Price
		}
		return sum / len(comparables)
	}
	return 0
}

// BuildPriceHistory merges external results passing the confidence floor
// with comparable campus listings, externals first. External entries are
// stamped with now; peer entries keep their listing's creation date.
func BuildPriceHistory(results []SearchResult, comparables []models.Hunt, now time.Time) []models.PricePoint {
	history := make([]models.PricePoint, 0, len(results)+len(comparables))
	for _, r := range results {
		if r.Confidence < MinHistoryConfidence {
			continue
		}
		history = append(history, models.PricePoint{
			Price:      r.Price,
			Condition:  r.Condition,
			Source:     r.Mall,
			URL:        r.URL,
			ObservedAt: now,
		})
	}
	for _, h := range comparables {
		history = append(history, models.PricePoint{
			Price:      h.Price,
			Condition:  h.Condition,
			Source:     PeerSource,
			HuntID:     h.ID,
			ObservedAt: h.CreatedAt,
		})
	}
	return history
}

// Analyze resolves the final price and assembles the stored analysis from
// the classification output, the shopping-search results and the comparable
// listings found in the store.
func Analyze(cls Classification, results []SearchResult, comparables []models.Hunt, now time.Time) (int, models.PriceAnalysis) {
	price := DecidePrice(cls, results, comparables)

	analysis := models.PriceAnalysis{
		Confidence:     cls.Confidence,
		PriceHistory:   BuildPriceHistory(results, comparables, now),
		LastAnalyzedAt: now,
	}
	for _, h := range comparables {
		analysis.ComparableListings = append(analysis.ComparableListings, models.ComparableListing{
			HuntID:    h.ID,
			Title:     h.Title,
			Price:     h.Price,
			Condition: h.Condition,
		})
	}
	for _, r := range results {
		analysis.ExternalPriceResults = append(analysis.ExternalPriceResults, models.ExternalPriceResult{
			Price:      r.Price,
			Condition:  r.Condition,
			Source:     r.Mall,
			URL:        r.URL,
			Title:      r.Title,
			Confidence: r.Confidence,
		})
	}
	return price, analysis
}
