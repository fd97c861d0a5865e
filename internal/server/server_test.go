package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cabral/scraper/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTable() []domain.FlatRow {
	price := func(v float64) *float64 { return &v }
	return []domain.FlatRow{
		{Collection: "Fishing", SubCollection: "Rods & Combos", Title: "Rod", Price: price(100), ReviewCount: 0, AvgRating: 0},
		{Collection: "Fishing", SubCollection: "Reels", Title: "Reel", Price: price(2500), ReviewCount: 12, AvgRating: 4.5},
		{Collection: "Archery", SubCollection: "Unknown", Title: "Bow", Price: price(8000), ReviewCount: 3, AvgRating: 2.0},
	}
}

func testRouter() *gin.Engine {
	h := NewHandler(func() ([]domain.FlatRow, error) {
		return testTable(), nil
	}, "")
	return h.Router()
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, testRouter(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts_Filtered(t *testing.T) {
	w := get(t, testRouter(), "/api/products?collection=Fishing&review_min=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int              `json:"total"`
		Items []domain.FlatRow `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Reel", resp.Items[0].Title)
}

func TestSummary(t *testing.T) {
	w := get(t, testRouter(), "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Summary struct {
			TotalProducts int             `json:"total_products"`
			MostReviewed  *domain.FlatRow `json:"most_reviewed"`
		} `json:"summary"`
		NoReviewCountTotal int `json:"no_review_count_total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Summary.TotalProducts)
	require.NotNil(t, resp.Summary.MostReviewed)
	assert.Equal(t, "Reel", resp.Summary.MostReviewed.Title)
	assert.Equal(t, 1, resp.NoReviewCountTotal)
}

func TestSummary_EmptySelectionReportsNoData(t *testing.T) {
	w := get(t, testRouter(), "/api/summary?price_min=999999")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Summary struct {
			TotalProducts int             `json:"total_products"`
			AveragePrice  *float64        `json:"average_price"`
			MostReviewed  *domain.FlatRow `json:"most_reviewed"`
			HighestRated  *domain.FlatRow `json:"highest_rated"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Summary.TotalProducts)
	assert.Nil(t, resp.Summary.AveragePrice)
	assert.Nil(t, resp.Summary.MostReviewed)
	assert.Nil(t, resp.Summary.HighestRated)
}

func TestWorstPerformers(t *testing.T) {
	w := get(t, testRouter(), "/api/worst")
	require.Equal(t, http.StatusOK, w.Code)

	var scored []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scored))
	require.Len(t, scored, 1, "only low-rated, reviewed products qualify")
	assert.Equal(t, "Bow", scored[0].Title)
}

func TestTableLoadFailure(t *testing.T) {
	h := NewHandler(func() ([]domain.FlatRow, error) {
		return nil, assert.AnError
	}, "")

	w := get(t, h.Router(), "/api/summary")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTableMemoized(t *testing.T) {
	loads := 0
	h := NewHandler(func() ([]domain.FlatRow, error) {
		loads++
		return testTable(), nil
	}, "")
	router := h.Router()

	get(t, router, "/api/summary")
	get(t, router, "/api/products")
	assert.Equal(t, 1, loads, "the table loads once while the source is unchanged")
}
