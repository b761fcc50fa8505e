/**
 * @description
 * Tracker pipeline: fetch -> extract -> persist for tracked product pages.
 * One URL's failure never aborts a batch run; extraction itself never fails
 * and degrades to a low-confidence record instead.
 *
 * @dependencies
 * - backend/internal/extract
 * - backend/internal/integrations/firecrawl
 * - backend/internal/services (PriceStore)
 */

package services

import (
	"context"
	"fmt"

	"github.com/pricetrack/backend/internal/extract"
	"github.com/pricetrack/backend/internal/integrations/firecrawl"
	"github.com/pricetrack/backend/internal/logger"
	"github.com/pricetrack/backend/internal/models"
)

// TrackerService runs the scrape pipeline over tracked products
type TrackerService struct {
	store   *PriceStore
	fetcher firecrawl.Fetcher
	engine  *extract.Engine
}

// NewTrackerService creates a new TrackerService
func NewTrackerService(store *PriceStore, fetcher firecrawl.Fetcher, engine *extract.Engine) *TrackerService {
	return &TrackerService{
		store:   store,
		fetcher: fetcher,
		engine:  engine,
	}
}

// TrackURL fetches one product page, extracts an observation and appends it
// to the product's history, creating the product row on first sight.
func (s *TrackerService) TrackURL(ctx context.Context, url string) (*models.PriceObservation, error) {
	raw, err := s.fetcher.Scrape(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	obs := s.engine.Extract(url, raw)
	if obs.Confidence != extract.ConfidenceFull {
		logger.Info("TrackerService: degraded extraction (%s) for %s", obs.Confidence, url)
	}

	if err := s.store.UpsertProduct(ctx, url); err != nil {
		return nil, fmt.Errorf("upsert product %s: %w", url, err)
	}
	row, err := s.store.AppendObservation(ctx, obs)
	if err != nil {
		return nil, fmt.Errorf("append observation for %s: %w", url, err)
	}
	return row, nil
}

// TrackAll runs TrackURL over every tracked product sequentially and reports
// how many observations were recorded. Per-URL failures are logged and
// skipped so one dead page cannot stall the whole run.
func (s *TrackerService) TrackAll(ctx context.Context) (int, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return 0, err
	}

	tracked := 0
	for _, product := range products {
		row, err := s.TrackURL(ctx, product.URL)
		if err != nil {
			logger.Error("TrackerService: %v", err)
			continue
		}
		logger.Info("TrackerService: recorded %s %.2f %s for %s", row.Name, row.Price, row.Currency, product.URL)
		tracked++
	}
	return tracked, nil
}
