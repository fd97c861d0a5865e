package normalize

import (
	"testing"

	"cabral/scraper/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice_CurrencyString(t *testing.T) {
	price := ParsePrice("₹12,345")
	require.NotNil(t, price)
	assert.Equal(t, 12345.0, *price)
}

func TestParsePrice_PlainNumber(t *testing.T) {
	price := ParsePrice("499.50")
	require.NotNil(t, price)
	assert.Equal(t, 499.5, *price)
}

func TestParsePrice_Unparsable(t *testing.T) {
	assert.Nil(t, ParsePrice("call for price"))
	assert.Nil(t, ParsePrice(""))
	assert.Nil(t, ParsePrice("₹"))
}

func testCatalog() domain.Catalog {
	count := 5
	rating := 4.2
	return domain.Catalog{
		"fishing": {
			Title: "Fishing",
			Subs: map[string]*domain.SubCollection{
				"fishing-rods": {
					Title: "Fishing Rods",
					Products: []*domain.Product{
						{URL: "https://example.com/products/rod", Title: "Rod", Price: "₹100"},
					},
				},
			},
		},
		"archery": {
			Title: "Archery",
			Subs: map[string]*domain.SubCollection{
				"bows": {
					Title: "Bows",
					Products: []*domain.Product{
						{
							URL:           "https://example.com/products/bow",
							Title:         "Bow",
							Price:         "₹2,000",
							ReviewCount:   &count,
							AverageRating: &rating,
						},
					},
				},
			},
		},
	}
}

func testLookup() map[string]string {
	return map[string]string{
		"Fishing Rods": "Rods & Combos",
	}
}

func TestFlatten_EndToEnd(t *testing.T) {
	rows := Flatten(testCatalog(), testLookup())
	require.Len(t, rows, 2)

	// Sorted handle order: archery before fishing
	bow, rod := rows[0], rows[1]

	assert.Equal(t, "Bow", bow.Title)
	require.NotNil(t, bow.Price)
	assert.Equal(t, 2000.0, *bow.Price)
	assert.Equal(t, 5, bow.ReviewCount)
	assert.Equal(t, 4.2, bow.AvgRating)
	assert.Equal(t, UnknownCategory, bow.SubCollection)

	assert.Equal(t, "Rod", rod.Title)
	require.NotNil(t, rod.Price)
	assert.Equal(t, 100.0, *rod.Price)
	assert.Equal(t, 0, rod.ReviewCount, "absent review count defaults to 0")
	assert.Equal(t, 0.0, rod.AvgRating, "absent rating defaults to 0.0")
	assert.Equal(t, "Rods & Combos", rod.SubCollection)

	noReviews := 0
	for _, row := range rows {
		if row.ReviewCount == 0 {
			noReviews++
		}
	}
	assert.Equal(t, 1, noReviews)
}

func TestFlatten_Idempotent(t *testing.T) {
	catalog := testCatalog()
	lookup := testLookup()

	first := Flatten(catalog, lookup)
	second := Flatten(catalog, lookup)
	assert.Equal(t, first, second)
}

func TestFlatten_JoinNeverDropsRows(t *testing.T) {
	catalog := testCatalog()
	rows := Flatten(catalog, map[string]string{})

	require.Len(t, rows, catalog.ProductCount())
	for _, row := range rows {
		assert.Equal(t, UnknownCategory, row.SubCollection)
	}
}

func TestFlatten_UnparsablePriceIsAbsent(t *testing.T) {
	catalog := domain.Catalog{
		"fishing": {
			Title: "Fishing",
			Subs: map[string]*domain.SubCollection{
				"lures": {
					Title: "Lures",
					Products: []*domain.Product{
						{URL: "https://example.com/products/lure", Title: "Lure", Price: "TBD"},
					},
				},
			},
		},
	}

	rows := Flatten(catalog, nil)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Price)
}
