// Package normalize flattens the nested scraped catalog into one analyzable
// row per product, joining the sub-collection-to-category lookup and
// coercing price and review fields to numeric types.
package normalize

import (
	"sort"
	"strconv"
	"strings"

	"cabral/scraper/internal/domain"
)

// UnknownCategory is the sentinel parent category for sub-collection titles
// missing from the lookup table. Rows are never dropped on a lookup miss.
const UnknownCategory = "Unknown"

// Flatten emits one row per product. It is pure: the catalog is not
// mutated and repeated calls yield identical output. Go maps iterate in
// random order, so collection and sub-collection handles are walked in
// sorted order to keep the result deterministic; products keep their
// scraped slice order.
func Flatten(catalog domain.Catalog, subTitleToParent map[string]string) []domain.FlatRow {
	rows := make([]domain.FlatRow, 0, catalog.ProductCount())

	for _, parentHandle := range sortedKeys(catalog) {
		collection := catalog[parentHandle]

		for _, subHandle := range sortedKeys(collection.Subs) {
			sub := collection.Subs[subHandle]

			for _, product := range sub.Products {
				row := domain.FlatRow{
					ParentHandle:  parentHandle,
					Collection:    collection.Title,
					SubHandle:     subHandle,
					SubTitle:      sub.Title,
					SubCollection: resolveParent(sub.Title, subTitleToParent),
					Title:         product.Title,
					Price:         ParsePrice(product.Price),
					SKU:           product.SKU,
					Description:   product.Description,
					URL:           product.URL,
					Images:        product.Images,
				}

				// Absent ratings coerce to the defined fallbacks
				if product.ReviewCount != nil {
					row.ReviewCount = *product.ReviewCount
				}
				if product.AverageRating != nil {
					row.AvgRating = *product.AverageRating
				}

				rows = append(rows, row)
			}
		}
	}

	return rows
}

// ParsePrice coerces a scraped price string like "₹12,345" to a decimal.
// The currency symbol and thousands separators are stripped; anything
// still unparsable yields nil, never an error.
func ParsePrice(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "₹", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &price
}

func resolveParent(subTitle string, subTitleToParent map[string]string) string {
	if parent, ok := subTitleToParent[subTitle]; ok {
		return parent
	}
	return UnknownCategory
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
