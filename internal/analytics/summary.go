package analytics

import (
	"cabral/scraper/internal/domain"
)

// Summary holds the KPI card values for one filter selection. MostReviewed,
// HighestRated and AveragePrice are nil on an empty selection (or, for the
// price, when no row carries a coerced price) — the explicit no-data state
// rather than a fault on an empty-selection access.
type Summary struct {
	TotalProducts  int             `json:"total_products"`
	AveragePrice   *float64        `json:"average_price"`
	AverageRating  float64         `json:"average_rating"`
	MostReviewed   *domain.FlatRow `json:"most_reviewed"`
	HighestRated   *domain.FlatRow `json:"highest_rated"`
	NoReviewCount  int             `json:"no_review_count"`
	ReviewCoverage float64         `json:"review_coverage"`
}

// Summarize computes the KPI summary over the given rows. Ties for most
// reviewed and highest rated break toward the earlier row.
func Summarize(rows []domain.FlatRow) Summary {
	summary := Summary{TotalProducts: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	var priceSum float64
	priced := 0
	var ratingSum float64
	reviewed := 0
	mostReviewed := 0
	highestRated := 0

	for i, row := range rows {
		if row.Price != nil {
			priceSum += *row.Price
			priced++
		}
		ratingSum += row.AvgRating

		if row.ReviewCount == 0 {
			summary.NoReviewCount++
		} else {
			reviewed++
		}

		if row.ReviewCount > rows[mostReviewed].ReviewCount {
			mostReviewed = i
		}
		if row.AvgRating > rows[highestRated].AvgRating {
			highestRated = i
		}
	}

	if priced > 0 {
		avg := priceSum / float64(priced)
		summary.AveragePrice = &avg
	}
	summary.AverageRating = ratingSum / float64(len(rows))
	summary.ReviewCoverage = float64(reviewed) / float64(len(rows)) * 100
	summary.MostReviewed = &rows[mostReviewed]
	summary.HighestRated = &rows[highestRated]

	return summary
}
