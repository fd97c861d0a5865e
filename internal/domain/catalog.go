package domain

// Catalog is the persisted nested form of the scraped storefront,
// keyed by top-level collection handle.
type Catalog map[string]*Collection

// Collection is a top-level category from the header navigation.
type Collection struct {
	Title string                    `json:"title"`
	Subs  map[string]*SubCollection `json:"subs"`
}

// SubCollection holds the products scraped from one collection listing.
type SubCollection struct {
	Title    string     `json:"title"`
	Products []*Product `json:"products"`
}

// CollectionHierarchy is the collections-only artifact written by the
// collection walk stage, before any products are scraped.
type CollectionHierarchy map[string]*CollectionNode

// CollectionNode maps a collection handle to its title and sub-collection
// handles. Duplicate sub handles dedupe by map key.
type CollectionNode struct {
	Title string            `json:"title"`
	Subs  map[string]string `json:"subs"`
}

// ProductCount walks the catalog and counts products across all
// sub-collections.
func (c Catalog) ProductCount() int {
	n := 0
	for _, coll := range c {
		for _, sub := range coll.Subs {
			n += len(sub.Products)
		}
	}
	return n
}
