/**
 * @description
 * One-shot tracker run.
 * Scrapes every tracked product once and appends the resulting observations.
 * Meant to be invoked by cron or by hand; scheduling lives outside the core.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/services
 * - backend/internal/integrations/firecrawl
 */

package main

import (
	"context"
	"flag"
	"log"

	"github.com/pricetrack/backend/internal/config"
	"github.com/pricetrack/backend/internal/db"
	"github.com/pricetrack/backend/internal/extract"
	"github.com/pricetrack/backend/internal/integrations/firecrawl"
	"github.com/pricetrack/backend/internal/services"
)

func main() {
	url := flag.String("url", "", "track a single product URL instead of the whole set")
	flag.Parse()

	log.Println("🚀 Starting tracker run...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Firecrawl.APIKey == "" {
		log.Fatalf("FIRECRAWL_API_KEY is required for tracker runs")
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	store := services.NewPriceStore(pgDB, services.NewLatestPriceCache(redisClient))
	fetcher := firecrawl.NewClient(cfg)
	tracker := services.NewTrackerService(store, fetcher, extract.NewEngine())

	ctx := context.Background()

	if *url != "" {
		row, err := tracker.TrackURL(ctx, *url)
		if err != nil {
			log.Fatalf("tracking %s failed: %v", *url, err)
		}
		log.Printf("✅ Recorded %s %.2f %s for %s", row.Name, row.Price, row.Currency, *url)
		return
	}

	tracked, err := tracker.TrackAll(ctx)
	if err != nil {
		log.Fatalf("tracker run failed: %v", err)
	}
	log.Printf("✅ Tracker run completed: %d observations recorded.", tracked)
}
