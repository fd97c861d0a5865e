package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabral/scraper/internal/config"
	"cabral/scraper/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// StorefrontClient fetches and parses pages of the target storefront. All
// methods are sequential; the per-stage limiters enforce the fixed
// inter-request delays.
type StorefrontClient interface {
	// CollectionHierarchy scrapes the header navigation. A root fetch
	// failure is logged and yields an empty hierarchy, not an error.
	CollectionHierarchy(ctx context.Context) (domain.CollectionHierarchy, error)
	// ProductURLs paginates a collection listing and returns de-duplicated
	// product URLs in insertion order.
	ProductURLs(ctx context.Context, handle string) ([]string, error)
	// ProductDetails scrapes one product page. It always returns a record;
	// fetch and parse failures are recorded on the record's error fields.
	ProductDetails(ctx context.Context, url string) *domain.Product
	// RatingsSummary reads the ratings badge from a product page.
	RatingsSummary(ctx context.Context, url string) (*domain.RatingsSummary, error)
}

type storefrontClient struct {
	config     config.StorefrontConfig
	baseURL    string
	httpClient *resty.Client
	parser     *pageParser

	// One limiter per scrape stage, so the listing walk, product detail
	// pass and ratings pass each keep their own fixed delay.
	listingRL ratelimit.Limiter
	productRL ratelimit.Limiter
	ratingsRL ratelimit.Limiter
}

func NewStorefrontClient(cfg config.StorefrontConfig, proxySupplier ProxySupplier) StorefrontClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("Using proxy: %s", proxyURL)
		}
	}

	return &storefrontClient{
		config:     cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
		parser:     newPageParser(strings.TrimRight(cfg.BaseURL, "/"), cfg.Collections),
		listingRL:  newDelayLimiter(cfg.ListingDelayMs),
		productRL:  newDelayLimiter(cfg.ProductDelayMs),
		ratingsRL:  newDelayLimiter(cfg.RatingsDelayMs),
	}
}

// newDelayLimiter builds a limiter releasing one request per delay window.
func newDelayLimiter(delayMs int) ratelimit.Limiter {
	if delayMs <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(1, ratelimit.Per(time.Duration(delayMs)*time.Millisecond))
}

func (c *storefrontClient) CollectionHierarchy(ctx context.Context) (domain.CollectionHierarchy, error) {
	doc, err := c.fetchDocument(ctx, c.listingRL, c.baseURL)
	if err != nil {
		log.Errorf("Failed to fetch storefront root %s: %v", c.baseURL, err)
		return domain.CollectionHierarchy{}, nil
	}

	hierarchy := c.parser.ParseCollectionHierarchy(doc)
	log.Infof("Discovered %d allowed collections", len(hierarchy))
	return hierarchy, nil
}

func (c *storefrontClient) ProductURLs(ctx context.Context, handle string) ([]string, error) {
	var urls []string
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		if c.config.MaxPages > 0 && page > c.config.MaxPages {
			log.Warnf("Collection %s reached the page ceiling (%d), stopping pagination", handle, c.config.MaxPages)
			break
		}

		listingURL := fmt.Sprintf("%s/collections/%s?page=%d", c.baseURL, handle, page)
		doc, err := c.fetchDocument(ctx, c.listingRL, listingURL)
		if err != nil {
			log.Errorf("Failed to fetch listing page %s: %v", listingURL, err)
			break
		}

		if !c.parser.IsCollectionPage(doc) {
			log.Infof("No products found in: %s", listingURL)
			break
		}

		links := c.parser.ProductLinks(doc)
		if len(links) == 0 {
			break
		}

		for _, link := range links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			urls = append(urls, link)
		}
	}

	return urls, nil
}

func (c *storefrontClient) ProductDetails(ctx context.Context, url string) *domain.Product {
	product := &domain.Product{URL: url, Reviews: []domain.Review{}}

	doc, err := c.fetchDocument(ctx, c.productRL, url)
	if err != nil {
		log.Errorf("Failed to fetch product %s: %v", url, err)
		product.Error = "Failed to load page"
		return product
	}

	c.parser.ParseProduct(doc, product)
	return product
}

func (c *storefrontClient) RatingsSummary(ctx context.Context, url string) (*domain.RatingsSummary, error) {
	doc, err := c.fetchDocument(ctx, c.ratingsRL, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}

	return c.parser.ParseRatingsBadge(doc), nil
}

func (c *storefrontClient) fetchDocument(ctx context.Context, rl ratelimit.Limiter, url string) (*goquery.Document, error) {
	rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}
