package main

import (
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var freshScrape bool

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Scrape the collections hierarchy from the storefront header",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initContainer()
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Service.ScrapeCollections(ctx)
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape all products of the persisted collections hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initContainer()
		if err != nil {
			return err
		}
		defer app.Close()

		if freshScrape && app.StateManager != nil {
			if err := app.StateManager.Reset(ctx); err != nil {
				return err
			}
			log.Info("Cleared saved scrape progress")
		}

		return app.Service.ScrapeCatalog(ctx)
	},
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Merge ratings-badge summaries into the scraped catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initContainer()
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Service.AugmentRatings(ctx)
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Flatten the rated catalog into the dashboard CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := initContainer()
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Service.ExportCSV()
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&freshScrape, "fresh", false, "discard saved progress and re-scrape everything")

	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(ratingsCmd)
	rootCmd.AddCommand(normalizeCmd)
}
