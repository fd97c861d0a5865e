package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cabral/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
)

var flatCSVHeader = []string{
	"collection", "sub_title", "sub_collection", "title", "price", "sku",
	"description", "url", "images", "review_count", "avg_rating",
}

// WriteFlatCSV writes the flattened row table for dashboard consumption.
// Absent prices serialize as empty cells; image URLs join with "|".
func WriteFlatCSV(path string, rows []domain.FlatRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(flatCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		price := ""
		if row.Price != nil {
			price = strconv.FormatFloat(*row.Price, 'f', -1, 64)
		}
		record := []string{
			row.Collection,
			row.SubTitle,
			row.SubCollection,
			row.Title,
			price,
			row.SKU,
			row.Description,
			row.URL,
			strings.Join(row.Images, "|"),
			strconv.Itoa(row.ReviewCount),
			strconv.FormatFloat(row.AvgRating, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.Infof("Wrote %d rows to %s", len(rows), path)
	return nil
}
