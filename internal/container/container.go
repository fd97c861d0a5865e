package container

import (
	"context"
	"fmt"

	"cabral/scraper/internal/client"
	"cabral/scraper/internal/config"
	"cabral/scraper/internal/repository"
	"cabral/scraper/internal/server"
	"cabral/scraper/internal/service"
	"cabral/scraper/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components. Postgres and Redis are
// optional; when disabled in config the service runs on flat files alone.
type Container struct {
	Config       *config.Config
	Client       client.StorefrontClient
	Repository   repository.ProductRepository
	StateManager state.StateManager

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxySupplier, err := client.NewProxySupplier(context.Background(), cfg.Storefront.Proxies, cfg.Storefront.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	container.Client = client.NewStorefrontClient(cfg.Storefront, proxySupplier)

	if cfg.Database.Enabled {
		db, err := pgxpool.New(context.Background(),
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		container.db = db
		container.Repository = repository.NewProductRepository(db)
		log.Info("Connected to Postgres")
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		container.redis = rdb
		container.StateManager = state.NewRedisStateManager(rdb)
		log.Info("Connected to Redis")
	}

	container.Service = service.NewService(
		container.Client,
		container.Repository,
		container.StateManager,
		cfg.Files,
	)

	return container, nil
}

// DashboardHandler builds the API handler over the normalized table.
func (c *Container) DashboardHandler() *server.Handler {
	return server.NewHandler(c.Service.Normalize, c.Config.Files.RatedCatalog)
}

// Close performs cleanup when shutting down
func (c *Container) Close() {
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		c.redis.Close()
	}
}
