/**
 * @description
 * API Route definitions.
 * Sets up the router groups, wires services and assigns handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/services
 * - backend/internal/integrations/firecrawl
 */

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pricetrack/backend/internal/api/handlers"
	"github.com/pricetrack/backend/internal/config"
	"github.com/pricetrack/backend/internal/extract"
	"github.com/pricetrack/backend/internal/integrations/firecrawl"
	"github.com/pricetrack/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes. rdb may be nil (cache disabled).
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize Services
	cache := services.NewLatestPriceCache(rdb)
	store := services.NewPriceStore(db, cache)

	var tracker *services.TrackerService
	if cfg.Firecrawl.APIKey != "" {
		fetcher := firecrawl.NewClient(cfg)
		tracker = services.NewTrackerService(store, fetcher, extract.NewEngine())
	}

	// 2. Initialize Handlers
	productHandler := handlers.NewProductHandler(store, tracker)

	// 3. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	products := v1.Group("/products")
	products.Post("/", productHandler.TrackProduct)
	products.Post("/scrape", productHandler.ScrapeProduct)
	products.Get("/", productHandler.ListProducts)
	products.Get("/history", productHandler.GetHistory)
	products.Get("/latest", productHandler.GetLatest)
	products.Delete("/", productHandler.DeleteProduct)
}
