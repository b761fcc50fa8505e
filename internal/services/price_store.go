/**
 * @description
 * Price store for product tracking.
 * Owns the products / price_observations tables: idempotent product upsert,
 * append-only observation writes, history and listing queries. Integrity
 * violations surface as typed errors, never as silent overwrites.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgx/v5/pgconn: Postgres error codes gorm does not translate
 * - backend/internal/models
 */

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pricetrack/backend/internal/extract"
	"github.com/pricetrack/backend/internal/logger"
	"github.com/pricetrack/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrProductNotTracked is returned when an observation references a URL
	// with no product row. Callers must upsert the product first.
	ErrProductNotTracked = errors.New("product is not tracked")
	// ErrDuplicateObservation is returned when an observation for the same
	// product and timestamp already exists.
	ErrDuplicateObservation = errors.New("observation already recorded for this product and timestamp")
)

// PriceStore handles product and observation persistence
type PriceStore struct {
	db    *gorm.DB
	cache *LatestPriceCache
}

// NewPriceStore creates a new PriceStore. cache may be nil, which disables
// the latest-observation cache.
func NewPriceStore(db *gorm.DB, cache *LatestPriceCache) *PriceStore {
	return &PriceStore{
		db:    db,
		cache: cache,
	}
}

// UpsertProduct creates the product row for url if absent and leaves it
// untouched otherwise. Calling it twice is indistinguishable from calling it
// once.
func (s *PriceStore) UpsertProduct(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("product url is required")
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Product{URL: url})
	if result.Error != nil {
		logger.Error("PriceStore: Failed to upsert product %s: %v", url, result.Error)
		return result.Error
	}
	return nil
}

// AppendObservation records one immutable observation. The product must
// already be tracked; a duplicate (product_url, timestamp) pair is a
// conflict, not an update.
func (s *PriceStore) AppendObservation(ctx context.Context, obs extract.Observation) (*models.PriceObservation, error) {
	if obs.URL == "" {
		return nil, errors.New("observation url is required")
	}

	row := &models.PriceObservation{
		ID:         uuid.NewString(),
		ProductURL: obs.URL,
		Name:       obs.Name,
		Price:      obs.Price,
		Currency:   obs.Currency,
		Timestamp:  obs.Timestamp.UTC().Truncate(time.Microsecond),
	}
	if obs.MainImageURL != "" {
		image := obs.MainImageURL
		row.MainImageURL = &image
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, translateIntegrityError(err, obs.URL)
	}

	if err := s.cache.Set(ctx, *row); err != nil {
		// Cache refresh is best-effort; the observation is already durable.
		logger.Error("PriceStore: Failed to cache latest observation for %s: %v", obs.URL, err)
	}
	return row, nil
}

// GetHistory returns every observation for url, most recent first. An
// unknown URL yields an empty history, not an error.
func (s *PriceStore) GetHistory(ctx context.Context, url string) ([]models.PriceObservation, error) {
	observations := make([]models.PriceObservation, 0)
	result := s.db.WithContext(ctx).
		Where("product_url = ?", url).
		Order("timestamp DESC").
		Find(&observations)
	if result.Error != nil {
		return nil, result.Error
	}
	return observations, nil
}

// GetLatestObservation returns the most recent observation for url, or nil
// when none exists. Reads through the cache when one is configured.
func (s *PriceStore) GetLatestObservation(ctx context.Context, url string) (*models.PriceObservation, error) {
	if cached, err := s.cache.Get(ctx, url); err != nil {
		logger.Error("PriceStore: Latest-observation cache read failed for %s: %v", url, err)
	} else if cached != nil {
		return cached, nil
	}

	var row models.PriceObservation
	err := s.db.WithContext(ctx).
		Where("product_url = ?", url).
		Order("timestamp DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, row); err != nil {
		logger.Error("PriceStore: Failed to cache latest observation for %s: %v", url, err)
	}
	return &row, nil
}

// ListProducts returns every tracked product ordered by URL.
func (s *PriceStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	result := s.db.WithContext(ctx).Order("url").Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}
	return products, nil
}

// DeleteProduct removes a product and, by cascade, its whole observation
// history. This is an explicit administrative action; the tracker never
// deletes products on its own.
func (s *PriceStore) DeleteProduct(ctx context.Context, url string) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{URL: url})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotTracked, url)
	}

	if err := s.cache.Invalidate(ctx, url); err != nil {
		logger.Error("PriceStore: Failed to invalidate cache for %s: %v", url, err)
	}
	return nil
}

// translateIntegrityError maps driver-level constraint failures onto the
// store's typed errors. gorm translates most of them; raw Postgres codes are
// checked as well because not every execution path goes through the
// translator.
func translateIntegrityError(err error, url string) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %s", ErrProductNotTracked, url)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateObservation, url)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrProductNotTracked, url)
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrDuplicateObservation, url)
		}
	}
	return err
}
