/**
 * @description
 * Product API Handlers.
 * Tracking registration, listing, price history, latest observation, scrape
 * trigger, and administrative deletion.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pricetrack/backend/internal/logger"
	"github.com/pricetrack/backend/internal/services"
)

// ProductHandler handles product tracking requests
type ProductHandler struct {
	store   *services.PriceStore
	tracker *services.TrackerService
}

// NewProductHandler creates a new ProductHandler. tracker may be nil when no
// scrape API key is configured; the scrape endpoint then reports unavailable.
func NewProductHandler(store *services.PriceStore, tracker *services.TrackerService) *ProductHandler {
	return &ProductHandler{
		store:   store,
		tracker: tracker,
	}
}

// TrackRequest represents a track/scrape request body
type TrackRequest struct {
	URL string `json:"url"`
}

// TrackProduct registers a URL for tracking
// POST /api/v1/products
func (h *ProductHandler) TrackProduct(c *fiber.Ctx) error {
	var req TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product URL is required",
		})
	}

	if err := h.store.UpsertProduct(c.Context(), req.URL); err != nil {
		logger.Error("ProductHandler: Failed to track product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to track product",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"url":     req.URL,
	})
}

// ScrapeProduct runs the scrape pipeline for one URL right now
// POST /api/v1/products/scrape
func (h *ProductHandler) ScrapeProduct(c *fiber.Ctx) error {
	if h.tracker == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Scraping is not configured",
		})
	}

	var req TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product URL is required",
		})
	}

	observation, err := h.tracker.TrackURL(c.Context(), req.URL)
	if err != nil {
		logger.Error("ProductHandler: Scrape failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Scrape failed",
			"url":   req.URL,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(observation)
}

// ListProducts returns every tracked product
// GET /api/v1/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.store.ListProducts(c.Context())
	if err != nil {
		logger.Error("ProductHandler: Failed to list products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list products",
		})
	}
	return c.JSON(products)
}

// GetHistory returns the price history for a product, most recent first
// GET /api/v1/products/history?url=...
func (h *ProductHandler) GetHistory(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product URL is required",
		})
	}

	history, err := h.store.GetHistory(c.Context(), url)
	if err != nil {
		logger.Error("ProductHandler: Failed to fetch history: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}
	return c.JSON(history)
}

// GetLatest returns the most recent observation for a product
// GET /api/v1/products/latest?url=...
func (h *ProductHandler) GetLatest(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product URL is required",
		})
	}

	observation, err := h.store.GetLatestObservation(c.Context(), url)
	if err != nil {
		logger.Error("ProductHandler: Failed to fetch latest observation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch latest observation",
		})
	}
	if observation == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No observations recorded",
			"url":   url,
		})
	}
	return c.JSON(observation)
}

// DeleteProduct removes a product and its whole observation history
// DELETE /api/v1/products?url=...
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product URL is required",
		})
	}

	if err := h.store.DeleteProduct(c.Context(), url); err != nil {
		if errors.Is(err, services.ErrProductNotTracked) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
				"url":   url,
			})
		}
		logger.Error("ProductHandler: Failed to delete product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete product",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}
