package domain

// FlatRow is one denormalized product row, the unit the dashboards filter
// and aggregate over. Price stays nil when the raw price could not be
// coerced; ReviewCount and AvgRating carry the defined fallbacks (0, 0.0)
// for products that were never rated.
type FlatRow struct {
	ParentHandle  string   `json:"parent_handle"`
	Collection    string   `json:"collection"`
	SubHandle     string   `json:"sub_handle"`
	SubTitle      string   `json:"sub_title"`
	SubCollection string   `json:"sub_collection"`
	Title         string   `json:"title"`
	Price         *float64 `json:"price"`
	SKU           string   `json:"sku"`
	Description   string   `json:"description"`
	URL           string   `json:"url"`
	Images        []string `json:"images"`
	ReviewCount   int      `json:"review_count"`
	AvgRating     float64  `json:"avg_rating"`
}
