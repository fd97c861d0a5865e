// Package analytics implements the dashboard computations: conjunctive
// filtering over the flat product table and the derived aggregates the
// views display. Everything here is a pure function of its input rows.
package analytics

import (
	"cabral/scraper/internal/domain"
)

// Filter restricts the flat table. All active dimensions apply
// conjunctively; a nil bound leaves that side of a range open and an empty
// collection list admits every collection. All ranges are inclusive.
type Filter struct {
	Collections []string `json:"collections"`
	PriceMin    *float64 `json:"price_min"`
	PriceMax    *float64 `json:"price_max"`
	ReviewMin   *int     `json:"review_min"`
	ReviewMax   *int     `json:"review_max"`
	RatingMin   *float64 `json:"rating_min"`
	RatingMax   *float64 `json:"rating_max"`
}

// Apply returns the rows matching every active filter dimension, in their
// original order.
func (f Filter) Apply(rows []domain.FlatRow) []domain.FlatRow {
	collections := make(map[string]bool, len(f.Collections))
	for _, c := range f.Collections {
		collections[c] = true
	}

	filtered := make([]domain.FlatRow, 0, len(rows))
	for _, row := range rows {
		if f.matches(row, collections) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func (f Filter) matches(row domain.FlatRow, collections map[string]bool) bool {
	if len(collections) > 0 && !collections[row.Collection] {
		return false
	}

	// Rows without a coerced price never match an active price bound
	if f.PriceMin != nil || f.PriceMax != nil {
		if row.Price == nil {
			return false
		}
		if f.PriceMin != nil && *row.Price < *f.PriceMin {
			return false
		}
		if f.PriceMax != nil && *row.Price > *f.PriceMax {
			return false
		}
	}

	if f.ReviewMin != nil && row.ReviewCount < *f.ReviewMin {
		return false
	}
	if f.ReviewMax != nil && row.ReviewCount > *f.ReviewMax {
		return false
	}

	if f.RatingMin != nil && row.AvgRating < *f.RatingMin {
		return false
	}
	if f.RatingMax != nil && row.AvgRating > *f.RatingMax {
		return false
	}

	return true
}
