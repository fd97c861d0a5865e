package repository

import (
	"context"
	"fmt"

	"cabral/scraper/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository mirrors scraped products into Postgres. The sink is
// optional: the flat-file pipeline works without it.
type ProductRepository interface {
	SaveProduct(ctx context.Context, collection, subCollection string, product *domain.Product) error
}

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r *productRepository) SaveProduct(ctx context.Context, collection, subCollection string, product *domain.Product) error {
	query := `
	INSERT INTO products (url, collection, sub_collection, data)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (url)
	DO UPDATE SET collection = $2, sub_collection = $3, data = $4`
	_, err := r.db.Exec(ctx, query, product.URL, collection, subCollection, product)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}
