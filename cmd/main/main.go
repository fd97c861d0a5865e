package main

import (
	"os"

	"cabral/scraper/internal/config"
	"cabral/scraper/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Storefront catalog scraper and analytics service",
	Long:  "Scrapes the storefront catalog stage by stage (collections, products, ratings), normalizes it into a flat table and serves dashboard aggregates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = log.InfoLevel
		}
		log.SetLevel(level)

		return nil
	},
}

// initContainer wires the dependencies for one command run.
func initContainer() (*container.Container, error) {
	app, err := container.New(cfg)
	if err != nil {
		log.Errorf("Failed to initialize container: %v", err)
		return nil, err
	}
	return app, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
