// Package server exposes the dashboard data as a JSON API over the
// normalized flat table. Filters arrive as query parameters and every
// endpoint recomputes its aggregates from the filtered table on each
// request; only the table itself is memoized, keyed on the source
// artifact's modification time.
package server

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"cabral/scraper/internal/analytics"
	"cabral/scraper/internal/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	load       func() ([]domain.FlatRow, error)
	sourcePath string

	mu       sync.Mutex
	rows     []domain.FlatRow
	sourceAt time.Time
}

// NewHandler builds a handler over a table loader. sourcePath is the
// artifact whose mtime invalidates the memoized table; empty disables
// invalidation.
func NewHandler(load func() ([]domain.FlatRow, error), sourcePath string) *Handler {
	return &Handler{load: load, sourcePath: sourcePath}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.products)
	rg.GET("/summary", h.summary)
	rg.GET("/collections", h.collections)
	rg.GET("/subcollections", h.subCollections)
	rg.GET("/top-reviewed", h.topReviewed)
	rg.GET("/worst", h.worstPerformers)
	rg.GET("/words", h.words)
	rg.GET("/price-histogram", h.priceHistogram)
}

// Router assembles the gin engine with the API mounted under /api.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.RegisterRoutes(r.Group("/api"))

	return r
}

// table returns the memoized flat table, reloading when the source
// artifact changed on disk.
func (h *Handler) table() ([]domain.FlatRow, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rows != nil && !h.stale() {
		return h.rows, nil
	}

	rows, err := h.load()
	if err != nil {
		return nil, err
	}
	h.rows = rows
	if info, err := os.Stat(h.sourcePath); err == nil {
		h.sourceAt = info.ModTime()
	}
	log.Infof("Loaded %d rows into the dashboard table", len(rows))
	return rows, nil
}

func (h *Handler) stale() bool {
	if h.sourcePath == "" {
		return false
	}
	info, err := os.Stat(h.sourcePath)
	if err != nil {
		return false
	}
	return info.ModTime().After(h.sourceAt)
}

func (h *Handler) filtered(c *gin.Context) ([]domain.FlatRow, []domain.FlatRow, bool) {
	rows, err := h.table()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog table"})
		return nil, nil, false
	}
	return rows, filterFromQuery(c).Apply(rows), true
}

func (h *Handler) products(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(filtered),
		"items": filtered,
	})
}

func (h *Handler) summary(c *gin.Context) {
	all, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": analytics.Summarize(filtered),
		// Zero-review count over the full table, as the headline shows it
		"no_review_count_total": analytics.Summarize(all).NoReviewCount,
	})
}

func (h *Handler) collections(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.CountByCollection(filtered))
}

func (h *Handler) subCollections(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.StatsBySubCollection(filtered))
}

func (h *Handler) topReviewed(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.TopReviewed(filtered, parseInt(c.Query("n"), 5)))
}

func (h *Handler) worstPerformers(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.WorstPerformers(filtered, parseInt(c.Query("n"), 8)))
}

func (h *Handler) words(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.WordFrequencies(filtered, parseInt(c.Query("n"), 100)))
}

func (h *Handler) priceHistogram(c *gin.Context) {
	_, filtered, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.PriceHistogram(filtered, parseInt(c.Query("bins"), 50)))
}

// filterFromQuery builds a Filter from query parameters. Collections come
// as repeated params or a comma-separated list.
func filterFromQuery(c *gin.Context) analytics.Filter {
	collections := c.QueryArray("collection")
	if len(collections) == 0 {
		if s := c.Query("collections"); s != "" {
			collections = strings.Split(s, ",")
		}
	}

	return analytics.Filter{
		Collections: collections,
		PriceMin:    parseFloatPtr(c.Query("price_min")),
		PriceMax:    parseFloatPtr(c.Query("price_max")),
		ReviewMin:   parseIntPtr(c.Query("review_min")),
		ReviewMax:   parseIntPtr(c.Query("review_max")),
		RatingMin:   parseFloatPtr(c.Query("rating_min")),
		RatingMax:   parseFloatPtr(c.Query("rating_max")),
	}
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
