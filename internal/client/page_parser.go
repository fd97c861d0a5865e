package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"cabral/scraper/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

var collectionHandleRe = regexp.MustCompile(`^/collections/([^/?#]+)`)

type pageParser struct {
	baseURL string
	allowed map[string]bool
}

func newPageParser(baseURL string, allowedTitles []string) *pageParser {
	allowed := make(map[string]bool, len(allowedTitles))
	for _, title := range allowedTitles {
		allowed[title] = true
	}
	return &pageParser{
		baseURL: baseURL,
		allowed: allowed,
	}
}

// ParseCollectionHierarchy extracts the allow-listed collections and their
// sub-collections from the header navigation of the storefront root page.
func (p *pageParser) ParseCollectionHierarchy(doc *goquery.Document) domain.CollectionHierarchy {
	hierarchy := domain.CollectionHierarchy{}

	doc.Find("store-header main-menu details > div > nav > ul > li").Each(func(i int, li *goquery.Selection) {
		summary := li.Find("summary > a").First()
		if summary.Length() == 0 {
			return
		}

		title := strings.TrimSpace(summary.Text())
		if !p.allowed[title] {
			return
		}

		// Handle from the first path segment of the link, slug of the
		// title when the link carries no collection path
		handle := slugify(title)
		if href, ok := summary.Attr("href"); ok {
			if matches := collectionHandleRe.FindStringSubmatch(href); len(matches) > 1 {
				handle = matches[1]
			}
		}

		subs := make(map[string]string)
		li.Find("ul a[href*='/collections/']").Each(func(j int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			matches := collectionHandleRe.FindStringSubmatch(href)
			if len(matches) < 2 {
				return
			}
			subs[matches[1]] = strings.TrimSpace(a.Text())
		})

		hierarchy[handle] = &domain.CollectionNode{Title: title, Subs: subs}
	})

	return hierarchy
}

// IsCollectionPage reports whether a listing page is still in a collection
// context. The storefront redirects past-the-end pages to a non-collection
// canonical URL, which is the pagination termination signal. A page without
// a canonical link also terminates.
func (p *pageParser) IsCollectionPage(doc *goquery.Document) bool {
	canonical := doc.Find("link[rel='canonical']").First()
	if canonical.Length() == 0 {
		return false
	}
	href, _ := canonical.Attr("href")
	return strings.Contains(href, "/collections/")
}

// ProductLinks returns the absolute product URLs on a listing page, query
// strings stripped. Duplicates are kept; the caller de-duplicates across
// pages.
func (p *pageParser) ProductLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("a[href*='/products/']").Each(func(i int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.SplitN(href, "?", 2)[0]
		if href == "" {
			return
		}
		links = append(links, p.absoluteURL(href))
	})
	return links
}

// ParseProduct fills a product record from the JSON-LD structured-data
// block and the review-widget payload of a product page. The two blocks
// fail independently: each failure is recorded on the record and never
// aborts the other.
func (p *pageParser) ParseProduct(doc *goquery.Document, product *domain.Product) {
	p.parseStructuredData(doc, product)
	p.parseReviews(doc, product)
}

func (p *pageParser) parseStructuredData(doc *goquery.Document, product *domain.Product) {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		product.Error = "No JSON-LD script found"
		return
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(script.Text())), &decoded); err != nil {
		product.Error = fmt.Sprintf("Failed to parse JSON-LD: %v", err)
		return
	}

	// A list payload carries several JSON-LD objects; take the one tagged
	// as the product, else the first
	node, ok := decoded.(map[string]interface{})
	if !ok {
		list, isList := decoded.([]interface{})
		if !isList || len(list) == 0 {
			product.Error = "Failed to parse JSON-LD: unexpected payload shape"
			return
		}
		for _, item := range list {
			m, isMap := item.(map[string]interface{})
			if isMap && asString(m["@type"]) == "Product" {
				node = m
				break
			}
		}
		if node == nil {
			node, ok = list[0].(map[string]interface{})
			if !ok {
				product.Error = "Failed to parse JSON-LD: unexpected payload shape"
				return
			}
		}
	}

	product.Title = asString(node["name"])
	product.Description = asString(node["description"])
	product.SKU = asString(node["sku"])

	// Offers appear as a list on this storefront; a plain object form is
	// accepted as well
	switch offers := node["offers"].(type) {
	case []interface{}:
		if len(offers) > 0 {
			if offer, isMap := offers[0].(map[string]interface{}); isMap {
				product.Price = asString(offer["price"])
				product.Currency = asString(offer["priceCurrency"])
			}
		}
	case map[string]interface{}:
		product.Price = asString(offers["price"])
		product.Currency = asString(offers["priceCurrency"])
	}

	switch image := node["image"].(type) {
	case string:
		product.Images = []string{image}
	case []interface{}:
		for _, img := range image {
			if s := asString(img); s != "" {
				product.Images = append(product.Images, s)
			}
		}
	}
}

func (p *pageParser) parseReviews(doc *goquery.Document, product *domain.Product) {
	container := doc.Find("div.jdgm-gallery-data").First()
	if container.Length() == 0 {
		return
	}

	payload := container.AttrOr("data-json", "[]")

	var rawReviews []struct {
		ReviewerName string  `json:"reviewer_name"`
		Title        string  `json:"title"`
		BodyHTML     string  `json:"body_html"`
		Rating       int     `json:"rating"`
		CreatedAt    string  `json:"created_at"`
		PicturesURLs []struct {
			Original string `json:"original"`
		} `json:"pictures_urls"`
	}
	if err := json.Unmarshal([]byte(payload), &rawReviews); err != nil {
		product.ReviewError = fmt.Sprintf("Failed to parse reviews payload: %v", err)
		return
	}

	for _, raw := range rawReviews {
		review := domain.Review{
			Reviewer:  raw.ReviewerName,
			Title:     raw.Title,
			Body:      htmlToText(raw.BodyHTML),
			Rating:    raw.Rating,
			CreatedAt: raw.CreatedAt,
			ImageURLs: []string{},
		}
		for _, pic := range raw.PicturesURLs {
			review.ImageURLs = append(review.ImageURLs, pic.Original)
		}
		product.Reviews = append(product.Reviews, review)
	}

	log.Debugf("Parsed %d reviews for %s", len(rawReviews), product.URL)
}

// ParseRatingsBadge reads the aggregate rating pair from the ratings badge.
// A missing badge or unparsable attribute leaves the field nil.
func (p *pageParser) ParseRatingsBadge(doc *goquery.Document) *domain.RatingsSummary {
	summary := &domain.RatingsSummary{}

	badge := doc.Find("div.jdgm-prev-badge").First()
	if badge.Length() == 0 {
		return summary
	}

	if raw, ok := badge.Attr("data-average-rating"); ok {
		if rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			summary.AverageRating = &rating
		}
	}
	if raw, ok := badge.Attr("data-number-of-reviews"); ok {
		if count, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			summary.ReviewCount = &count
		}
	}

	return summary
}

func (p *pageParser) absoluteURL(href string) string {
	base, err := url.Parse(p.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// asString renders a JSON-LD scalar as a string. Prices sometimes arrive
// as JSON numbers rather than strings.
func asString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

// htmlToText strips markup from a review body, returning plain text.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}

func slugify(title string) string {
	return strings.ToLower(strings.ReplaceAll(title, " ", "-"))
}
