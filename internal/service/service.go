package service

import (
	"context"
	"strings"

	"cabral/scraper/internal/client"
	"cabral/scraper/internal/config"
	"cabral/scraper/internal/domain"
	"cabral/scraper/internal/normalize"
	"cabral/scraper/internal/repository"
	"cabral/scraper/internal/state"
	"cabral/scraper/internal/store"

	log "github.com/sirupsen/logrus"
)

// Service runs the pipeline stages in order. The scrape stages are strictly
// sequential: one request at a time, throttled by the client's per-stage
// delays. repository and stateManager may be nil, in which case products
// are only persisted to the JSON artifacts and no progress survives a
// crash.
type Service struct {
	client       client.StorefrontClient
	repository   repository.ProductRepository
	stateManager state.StateManager
	files        config.FilesConfig
}

func NewService(
	client client.StorefrontClient,
	repository repository.ProductRepository,
	stateManager state.StateManager,
	files config.FilesConfig,
) *Service {
	return &Service{
		client:       client,
		repository:   repository,
		stateManager: stateManager,
		files:        files,
	}
}

// ScrapeCollections walks the storefront header navigation and persists
// the collections hierarchy.
func (s *Service) ScrapeCollections(ctx context.Context) error {
	hierarchy, err := s.client.CollectionHierarchy(ctx)
	if err != nil {
		return err
	}

	return store.SaveCollections(s.files.Collections, hierarchy)
}

// ScrapeCatalog walks every sub-collection of the persisted hierarchy,
// lists its products and scrapes each product page. Sub-collections already
// marked done in the progress state are carried over from the previous
// catalog artifact instead of re-scraped.
func (s *Service) ScrapeCatalog(ctx context.Context) error {
	hierarchy, err := store.LoadCollections(s.files.Collections)
	if err != nil {
		return err
	}

	// Previous artifact, reused for sub-collections the state marks done
	previous, err := store.LoadCatalog(s.files.Catalog)
	if err != nil {
		previous = domain.Catalog{}
	}

	catalog := domain.Catalog{}
	for parentHandle, node := range hierarchy {
		collection := &domain.Collection{
			Title: node.Title,
			Subs:  make(map[string]*domain.SubCollection),
		}
		catalog[parentHandle] = collection

		// A collection without sub-collections is scraped as its own sub
		subs := node.Subs
		if len(subs) == 0 {
			subs = map[string]string{parentHandle: node.Title}
		}

		for subHandle, subTitle := range subs {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// Navigation carries "Go to ..." shortcut entries that are not
			// real sub-collections
			if strings.Contains(subTitle, "Go to") {
				continue
			}

			if done := s.subCollectionDone(ctx, subHandle); done {
				if prev := previousSub(previous, parentHandle, subHandle); prev != nil {
					log.Infof("Skipping completed sub-collection %s (%d products)", subHandle, len(prev.Products))
					collection.Subs[subHandle] = prev
					continue
				}
			}

			log.Infof("Scraping '%s' -> '%s'", node.Title, subTitle)

			urls, err := s.client.ProductURLs(ctx, subHandle)
			if err != nil {
				log.Errorf("Failed to list products for %s: %v", subHandle, err)
				continue
			}
			log.Infof("  %d products found", len(urls))

			sub := &domain.SubCollection{
				Title:    subTitle,
				Products: make([]*domain.Product, 0, len(urls)),
			}
			for _, url := range urls {
				product := s.client.ProductDetails(ctx, url)
				sub.Products = append(sub.Products, product)

				if s.repository != nil {
					if err := s.repository.SaveProduct(ctx, node.Title, subTitle, product); err != nil {
						log.Errorf("Failed to save product %s: %v", url, err)
					}
				}
			}
			collection.Subs[subHandle] = sub

			s.markSubCollectionDone(ctx, subHandle)
		}
	}

	return store.SaveCatalog(s.files.Catalog, catalog)
}

// AugmentRatings re-visits every product in the scraped catalog and merges
// the ratings-badge summary into its record, overwriting only the
// average_rating and count_reviews fields. A failed fetch skips that
// product and leaves its previous values untouched.
func (s *Service) AugmentRatings(ctx context.Context) error {
	// With progress tracking on, resume from the partially rated artifact
	// a previous run left behind; otherwise start from the scraped catalog
	var catalog domain.Catalog
	var err error
	if s.stateManager != nil {
		catalog, err = store.LoadCatalog(s.files.RatedCatalog)
	}
	if catalog == nil {
		catalog, err = store.LoadCatalog(s.files.Catalog)
		if err != nil {
			return err
		}
	}

	for _, collection := range catalog {
		for _, sub := range collection.Subs {
			for _, product := range sub.Products {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if product.URL == "" {
					continue
				}

				if s.productRated(ctx, product.URL) {
					continue
				}

				log.Infof("Scraping ratings for: %s", product.URL)
				summary, err := s.client.RatingsSummary(ctx, product.URL)
				if err != nil {
					log.Errorf("Failed to load %s, skipping: %v", product.URL, err)
					continue
				}

				product.AverageRating = summary.AverageRating
				product.ReviewCount = summary.ReviewCount

				s.markProductRated(ctx, product.URL)
			}
		}
	}

	return store.SaveCatalog(s.files.RatedCatalog, catalog)
}

// Normalize flattens the rated catalog against the category lookup.
func (s *Service) Normalize() ([]domain.FlatRow, error) {
	catalog, err := store.LoadCatalog(s.files.RatedCatalog)
	if err != nil {
		return nil, err
	}

	lookup, err := store.LoadCategoryLookup(s.files.CategoryLookup)
	if err != nil {
		return nil, err
	}

	return normalize.Flatten(catalog, lookup.SubTitleToParent()), nil
}

// ExportCSV writes the flattened table for dashboard consumption.
func (s *Service) ExportCSV() error {
	rows, err := s.Normalize()
	if err != nil {
		return err
	}
	return store.WriteFlatCSV(s.files.FlatCSV, rows)
}

func (s *Service) subCollectionDone(ctx context.Context, handle string) bool {
	if s.stateManager == nil {
		return false
	}
	done, err := s.stateManager.IsSubCollectionDone(ctx, handle)
	if err != nil {
		log.Errorf("Failed to read progress for %s: %v", handle, err)
		return false
	}
	return done
}

func (s *Service) markSubCollectionDone(ctx context.Context, handle string) {
	if s.stateManager == nil {
		return
	}
	if err := s.stateManager.MarkSubCollectionDone(ctx, handle); err != nil {
		log.Errorf("Failed to mark %s done: %v", handle, err)
	}
}

func (s *Service) productRated(ctx context.Context, url string) bool {
	if s.stateManager == nil {
		return false
	}
	done, err := s.stateManager.IsProductRated(ctx, url)
	if err != nil {
		log.Errorf("Failed to read rating progress for %s: %v", url, err)
		return false
	}
	return done
}

func (s *Service) markProductRated(ctx context.Context, url string) {
	if s.stateManager == nil {
		return
	}
	if err := s.stateManager.MarkProductRated(ctx, url); err != nil {
		log.Errorf("Failed to mark %s rated: %v", url, err)
	}
}

func previousSub(catalog domain.Catalog, parentHandle, subHandle string) *domain.SubCollection {
	collection, ok := catalog[parentHandle]
	if !ok {
		return nil
	}
	return collection.Subs[subHandle]
}
