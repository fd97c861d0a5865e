package analytics

import (
	"fmt"
	"math"
	"sort"

	"cabral/scraper/internal/domain"
)

// scoreEpsilon keeps the worst-performer score finite for zero-rated rows.
const scoreEpsilon = 1e-6

// CollectionCount is one bar of the products-per-collection chart.
type CollectionCount struct {
	Collection string `json:"collection"`
	Count      int    `json:"count"`
}

// CountByCollection counts products per collection, most populous first;
// ties order by collection title.
func CountByCollection(rows []domain.FlatRow) []CollectionCount {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Collection]++
	}

	out := make([]CollectionCount, 0, len(counts))
	for collection, count := range counts {
		out = append(out, CollectionCount{Collection: collection, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Collection < out[j].Collection
	})
	return out
}

// TopReviewed returns the n most-reviewed rows. The sort is stable, so
// ties keep their original row order.
func TopReviewed(rows []domain.FlatRow, n int) []domain.FlatRow {
	sorted := make([]domain.FlatRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReviewCount > sorted[j].ReviewCount
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// SubCollectionStats is one row of the products-vs-reviews comparison per
// resolved sub-collection category.
type SubCollectionStats struct {
	SubCollection    string  `json:"sub_collection"`
	ProductCount     int     `json:"product_count"`
	TotalReviews     int     `json:"total_reviews"`
	ReviewDelta      float64 `json:"review_delta_pct"`
	ReviewDeltaLabel string  `json:"review_delta_label"`
}

// StatsBySubCollection aggregates product and review counts per
// sub-collection category, least reviewed first. ReviewDelta is the
// percentage of reviews relative to products, minus the 100% baseline.
func StatsBySubCollection(rows []domain.FlatRow) []SubCollectionStats {
	type acc struct {
		products int
		reviews  int
	}
	groups := make(map[string]*acc)
	for _, row := range rows {
		g, ok := groups[row.SubCollection]
		if !ok {
			g = &acc{}
			groups[row.SubCollection] = g
		}
		g.products++
		g.reviews += row.ReviewCount
	}

	out := make([]SubCollectionStats, 0, len(groups))
	for name, g := range groups {
		delta := math.Round((float64(g.reviews)/float64(g.products)*100-100)*100) / 100
		stats := SubCollectionStats{
			SubCollection: name,
			ProductCount:  g.products,
			TotalReviews:  g.reviews,
			ReviewDelta:   delta,
		}
		if delta > 0 {
			stats.ReviewDeltaLabel = fmt.Sprintf("Reviewed %v%% more", delta)
		} else {
			stats.ReviewDeltaLabel = fmt.Sprintf("Reviewed %v%% less", -delta)
		}
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalReviews != out[j].TotalReviews {
			return out[i].TotalReviews < out[j].TotalReviews
		}
		return out[i].SubCollection < out[j].SubCollection
	})
	return out
}

// ScoredRow is one worst-performer candidate with its computed score.
type ScoredRow struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	ReviewCount int     `json:"review_count"`
	AvgRating   float64 `json:"avg_rating"`
	Score       float64 `json:"score"`
}

// WorstPerformers ranks products with at least one review and an average
// rating of 3 or below: many reviews at a low rating score worst. Returns
// the top n by descending score, ties keeping row order.
func WorstPerformers(rows []domain.FlatRow, n int) []ScoredRow {
	var scored []ScoredRow
	for _, row := range rows {
		if row.ReviewCount <= 0 || row.AvgRating > 3 {
			continue
		}
		rc := float64(row.ReviewCount)
		scored = append(scored, ScoredRow{
			Title:       row.Title,
			URL:         row.URL,
			ReviewCount: row.ReviewCount,
			AvgRating:   row.AvgRating,
			Score:       rc/(row.AvgRating+scoreEpsilon) + rc - row.AvgRating*2,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if n > len(scored) {
		n = len(scored)
	}
	return scored[:n]
}

// HistogramBin is one bar of the price distribution. High is exclusive
// except for the last bin, which includes the maximum.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// PriceHistogram buckets the coerced prices into equal-width bins. Rows
// without a price are skipped; an empty selection yields no bins.
func PriceHistogram(rows []domain.FlatRow, bins int) []HistogramBin {
	if bins <= 0 {
		bins = 50
	}

	var prices []float64
	for _, row := range rows {
		if row.Price != nil {
			prices = append(prices, *row.Price)
		}
	}
	if len(prices) == 0 {
		return nil
	}

	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	if min == max {
		return []HistogramBin{{Low: min, High: max, Count: len(prices)}}
	}

	width := (max - min) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Low: min + float64(i)*width, High: min + float64(i+1)*width}
	}
	for _, p := range prices {
		idx := int((p - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
