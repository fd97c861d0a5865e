// Package store persists the pipeline's stage artifacts: the collections
// hierarchy, the nested catalog (with and without ratings), the
// sub-collection category lookup, and the flattened CSV export.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"cabral/scraper/internal/domain"

	log "github.com/sirupsen/logrus"
)

// SaveCollections writes the collections-only artifact of the walk stage.
func SaveCollections(path string, hierarchy domain.CollectionHierarchy) error {
	return writeJSON(path, hierarchy)
}

// LoadCollections reads the collections artifact back.
func LoadCollections(path string) (domain.CollectionHierarchy, error) {
	var hierarchy domain.CollectionHierarchy
	if err := readJSON(path, &hierarchy); err != nil {
		return nil, err
	}
	return hierarchy, nil
}

// SaveCatalog writes the nested catalog artifact.
func SaveCatalog(path string, catalog domain.Catalog) error {
	return writeJSON(path, catalog)
}

// LoadCatalog reads a nested catalog artifact, with or without ratings.
func LoadCatalog(path string) (domain.Catalog, error) {
	var catalog domain.Catalog
	if err := readJSON(path, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// LoadCategoryLookup reads the sub-collection-to-category lookup table.
func LoadCategoryLookup(path string) (domain.CategoryLookup, error) {
	var lookup domain.CategoryLookup
	if err := readJSON(path, &lookup); err != nil {
		return nil, err
	}
	return lookup, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Infof("Wrote %s", path)
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
