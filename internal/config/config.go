package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Files      FilesConfig      `mapstructure:"files"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

// LogConfig controls logging output
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig holds the dashboard API server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// StorefrontConfig holds scraping configuration for the target storefront
type StorefrontConfig struct {
	BaseURL   string   `mapstructure:"base_url"`
	Timeout   int      `mapstructure:"timeout"`
	UserAgent string   `mapstructure:"user_agent"`
	Proxies   []string `mapstructure:"proxies"`

	// Allow-list of top-level collection titles scraped from the header nav
	Collections []string `mapstructure:"collections"`

	// Inter-request delays per stage, in milliseconds
	ListingDelayMs int `mapstructure:"listing_delay_ms"`
	ProductDelayMs int `mapstructure:"product_delay_ms"`
	RatingsDelayMs int `mapstructure:"ratings_delay_ms"`

	// Hard ceiling on listing pages per sub-collection
	MaxPages int `mapstructure:"max_pages"`
}

// FilesConfig names the JSON/CSV artifacts persisted between pipeline stages
type FilesConfig struct {
	Collections    string `mapstructure:"collections"`
	Catalog        string `mapstructure:"catalog"`
	RatedCatalog   string `mapstructure:"rated_catalog"`
	CategoryLookup string `mapstructure:"category_lookup"`
	FlatCSV        string `mapstructure:"flat_csv"`
}

// DatabaseConfig holds the optional Postgres sink configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds the optional scrape-progress store configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Defaults cover everything, so a missing config.yaml is fine
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("storefront.base_url", "https://cabraloutdoors.com")
	viper.SetDefault("storefront.timeout", 10)
	viper.SetDefault("storefront.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	viper.SetDefault("storefront.collections", []string{
		"Fishing",
		"Archery",
		"Camping & Outdoor",
		"Apparel / Merchandise",
	})
	viper.SetDefault("storefront.listing_delay_ms", 500)
	viper.SetDefault("storefront.product_delay_ms", 300)
	viper.SetDefault("storefront.ratings_delay_ms", 1000)
	viper.SetDefault("storefront.max_pages", 200)

	viper.SetDefault("files.collections", "all_collections.json")
	viper.SetDefault("files.catalog", "full_catalog.json")
	viper.SetDefault("files.rated_catalog", "full_catalog_with_ratings.json")
	viper.SetDefault("files.category_lookup", "sub_collection_categories.json")
	viper.SetDefault("files.flat_csv", "catalog_flat.csv")

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "catalog")
	viper.SetDefault("database.user", "catalog_user")
	viper.SetDefault("database.password", "catalog_pass")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
}
