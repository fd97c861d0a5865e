package domain

// Product is one scraped product page. URL is the identity key. Price is
// kept raw as scraped from the JSON-LD offer; numeric coercion happens in
// the normalizer. AverageRating and ReviewCount stay nil until the rating
// augmentation stage fills them in, and stay nil after it when the page has
// no ratings badge.
type Product struct {
	URL           string   `json:"url"`
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	SKU           string   `json:"sku,omitempty"`
	Price         string   `json:"price,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Images        []string `json:"images,omitempty"`
	Reviews       []Review `json:"reviews"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	ReviewCount   *int     `json:"count_reviews,omitempty"`

	// Failures are recorded per block, never propagated: a product with a
	// broken JSON-LD payload can still carry reviews and vice versa.
	Error       string `json:"error,omitempty"`
	ReviewError string `json:"review_error,omitempty"`
}

// Review is one customer review from the review-widget payload. Body is
// plain text with the widget's markup stripped.
type Review struct {
	Reviewer  string   `json:"reviewer"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Rating    int      `json:"rating"`
	CreatedAt string   `json:"created_at"`
	ImageURLs []string `json:"image_urls"`
}

// RatingsSummary is the aggregate pair read from the ratings badge on a
// product page. Either field may be nil when the badge or attribute is
// absent or unparsable.
type RatingsSummary struct {
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   *int     `json:"count_reviews"`
}
