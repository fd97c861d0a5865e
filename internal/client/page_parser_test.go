package client

import (
	"strings"
	"testing"

	"cabral/scraper/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://shop.example.com"

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func testParser() *pageParser {
	return newPageParser(baseURL, []string{"Fishing", "Archery", "Camping & Outdoor", "Apparel / Merchandise"})
}

const navHTML = `<html><body><div></div>
<store-header><header><main-menu><details><div><nav><ul>
  <li>
    <summary><a href="/collections/fishing">Fishing</a></summary>
    <ul>
      <li><a href="/collections/fishing-rods">Fishing Rods</a></li>
      <li><a href="/collections/fishing-reels?sort=price">Fishing Reels</a></li>
      <li><a href="/collections/fishing-rods">Fishing Rods Again</a></li>
      <li><a href="/pages/about">About</a></li>
    </ul>
  </li>
  <li>
    <summary><a href="/pages/archery-landing">Archery</a></summary>
    <ul></ul>
  </li>
  <li>
    <summary><a href="/collections/sale">Clearance</a></summary>
  </li>
</ul></nav></div></details></main-menu></header></store-header>
</body></html>`

func TestParseCollectionHierarchy(t *testing.T) {
	hierarchy := testParser().ParseCollectionHierarchy(parseDoc(t, navHTML))

	require.Len(t, hierarchy, 2, "non-allow-listed collections are skipped")

	fishing := hierarchy["fishing"]
	require.NotNil(t, fishing)
	assert.Equal(t, "Fishing", fishing.Title)
	// Duplicate sub handle dedupes by map key; non-collection links are skipped
	assert.Len(t, fishing.Subs, 2)
	assert.Equal(t, "Fishing Reels", fishing.Subs["fishing-reels"])

	// No collection path in the link: handle falls back to the title slug
	archery := hierarchy["archery"]
	require.NotNil(t, archery)
	assert.Equal(t, "Archery", archery.Title)
	assert.Empty(t, archery.Subs)
}

func TestParseCollectionHierarchy_Empty(t *testing.T) {
	hierarchy := testParser().ParseCollectionHierarchy(parseDoc(t, "<html><body></body></html>"))
	assert.Empty(t, hierarchy)
}

func TestIsCollectionPage(t *testing.T) {
	p := testParser()

	inContext := `<html><head><link rel="canonical" href="https://shop.example.com/collections/fishing-rods"></head></html>`
	assert.True(t, p.IsCollectionPage(parseDoc(t, inContext)))

	redirected := `<html><head><link rel="canonical" href="https://shop.example.com/"></head></html>`
	assert.False(t, p.IsCollectionPage(parseDoc(t, redirected)))

	assert.False(t, p.IsCollectionPage(parseDoc(t, "<html><head></head></html>")), "missing canonical terminates pagination")
}

func TestProductLinks(t *testing.T) {
	listing := `<html><body>
	  <a href="/products/carbon-rod?variant=123">Carbon Rod</a>
	  <a href="/products/spin-reel">Spin Reel</a>
	  <a href="/collections/fishing-rods">All rods</a>
	</body></html>`

	links := testParser().ProductLinks(parseDoc(t, listing))
	assert.Equal(t, []string{
		baseURL + "/products/carbon-rod",
		baseURL + "/products/spin-reel",
	}, links, "query strings stripped, URLs absolute")
}

const productHTML = `<html><head>
<script type="application/ld+json">
[
  {"@type": "BreadcrumbList", "itemListElement": []},
  {
    "@type": "Product",
    "name": "Carbon Rod",
    "description": "A light rod.",
    "sku": "ROD-1",
    "image": ["https://cdn.example.com/rod1.jpg", "https://cdn.example.com/rod2.jpg"],
    "offers": [{"price": "₹2,499", "priceCurrency": "INR"}]
  }
]
</script>
</head><body>
<div class="jdgm-gallery-data" data-json='[{"reviewer_name":"Asha","title":"Great","body_html":"&lt;p&gt;Casts &lt;b&gt;far&lt;/b&gt;.&lt;/p&gt;","rating":5,"created_at":"2024-05-01T10:00:00Z","pictures_urls":[{"original":"https://cdn.example.com/r1.jpg"}]}]'></div>
</body></html>`

func TestParseProduct(t *testing.T) {
	product := &domain.Product{URL: baseURL + "/products/carbon-rod", Reviews: []domain.Review{}}
	testParser().ParseProduct(parseDoc(t, productHTML), product)

	assert.Empty(t, product.Error)
	assert.Equal(t, "Carbon Rod", product.Title)
	assert.Equal(t, "A light rod.", product.Description)
	assert.Equal(t, "ROD-1", product.SKU)
	assert.Equal(t, "₹2,499", product.Price)
	assert.Equal(t, "INR", product.Currency)
	assert.Len(t, product.Images, 2)

	require.Len(t, product.Reviews, 1)
	review := product.Reviews[0]
	assert.Equal(t, "Asha", review.Reviewer)
	assert.Equal(t, "Casts far.", review.Body, "review markup is stripped to plain text")
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, []string{"https://cdn.example.com/r1.jpg"}, review.ImageURLs)
}

func TestParseProduct_SingleObjectOfferAndImage(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type": "Product", "name": "Tent", "sku": "T-1",
	 "image": "https://cdn.example.com/tent.jpg",
	 "offers": {"price": 5999, "priceCurrency": "INR"}}
	</script></head><body></body></html>`

	product := &domain.Product{Reviews: []domain.Review{}}
	testParser().ParseProduct(parseDoc(t, html), product)

	assert.Empty(t, product.Error)
	assert.Equal(t, "Tent", product.Title)
	assert.Equal(t, "5999", product.Price, "numeric prices render as strings")
	assert.Equal(t, []string{"https://cdn.example.com/tent.jpg"}, product.Images)
}

func TestParseProduct_MissingStructuredData(t *testing.T) {
	product := &domain.Product{Reviews: []domain.Review{}}
	testParser().ParseProduct(parseDoc(t, "<html><body></body></html>"), product)

	assert.Equal(t, "No JSON-LD script found", product.Error)
	assert.Empty(t, product.ReviewError)
}

func TestParseProduct_IndependentFailures(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">{not json</script>
	</head><body>
	<div class="jdgm-gallery-data" data-json='[{"reviewer_name":"Ben","rating":4,"body_html":"ok"}]'></div>
	</body></html>`

	product := &domain.Product{Reviews: []domain.Review{}}
	testParser().ParseProduct(parseDoc(t, html), product)

	assert.Contains(t, product.Error, "Failed to parse JSON-LD")
	assert.Empty(t, product.ReviewError)
	require.Len(t, product.Reviews, 1, "review extraction survives a structured-data failure")
	assert.Equal(t, "Ben", product.Reviews[0].Reviewer)
}

func TestParseProduct_BrokenReviewsPayload(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">{"@type": "Product", "name": "Rod"}</script>
	</head><body>
	<div class="jdgm-gallery-data" data-json='{oops'></div>
	</body></html>`

	product := &domain.Product{Reviews: []domain.Review{}}
	testParser().ParseProduct(parseDoc(t, html), product)

	assert.Empty(t, product.Error)
	assert.Contains(t, product.ReviewError, "Failed to parse reviews payload")
	assert.Equal(t, "Rod", product.Title)
}

func TestParseRatingsBadge(t *testing.T) {
	html := `<html><body><div class="jdgm-prev-badge" data-average-rating="4.33" data-number-of-reviews="27"></div></body></html>`

	summary := testParser().ParseRatingsBadge(parseDoc(t, html))
	require.NotNil(t, summary.AverageRating)
	assert.Equal(t, 4.33, *summary.AverageRating)
	require.NotNil(t, summary.ReviewCount)
	assert.Equal(t, 27, *summary.ReviewCount)
}

func TestParseRatingsBadge_Absent(t *testing.T) {
	summary := testParser().ParseRatingsBadge(parseDoc(t, "<html><body></body></html>"))
	assert.Nil(t, summary.AverageRating)
	assert.Nil(t, summary.ReviewCount)
}

func TestParseRatingsBadge_Unparsable(t *testing.T) {
	html := `<html><body><div class="jdgm-prev-badge" data-average-rating="n/a" data-number-of-reviews="27"></div></body></html>`

	summary := testParser().ParseRatingsBadge(parseDoc(t, html))
	assert.Nil(t, summary.AverageRating)
	require.NotNil(t, summary.ReviewCount)
	assert.Equal(t, 27, *summary.ReviewCount)
}
