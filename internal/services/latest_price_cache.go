/**
 * @description
 * Redis cache of each product's most recent observation.
 * Cache-aside over the price store: refreshed on append, invalidated on
 * product deletion. The whole type is nil-safe so deployments without Redis
 * skip caching transparently.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 * - backend/internal/models
 */

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pricetrack/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	latestObservationKeyPrefix = "latest_observation:"
	latestObservationTTL       = 24 * time.Hour
)

// LatestPriceCache caches the newest observation per product URL.
type LatestPriceCache struct {
	redis *redis.Client
}

// NewLatestPriceCache creates a cache over client. A nil client yields a
// disabled cache whose operations are no-ops.
func NewLatestPriceCache(client *redis.Client) *LatestPriceCache {
	if client == nil {
		return nil
	}
	return &LatestPriceCache{redis: client}
}

// Set stores obs as the latest observation for its product.
func (c *LatestPriceCache) Set(ctx context.Context, obs models.PriceObservation) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(obs)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, latestObservationKeyPrefix+obs.ProductURL, payload, latestObservationTTL).Err()
}

// Get returns the cached latest observation for url, or nil on a miss.
func (c *LatestPriceCache) Get(ctx context.Context, url string) (*models.PriceObservation, error) {
	if c == nil {
		return nil, nil
	}
	payload, err := c.redis.Get(ctx, latestObservationKeyPrefix+url).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var obs models.PriceObservation
	if err := json.Unmarshal(payload, &obs); err != nil {
		return nil, err
	}
	return &obs, nil
}

// Invalidate drops the cached observation for url.
func (c *LatestPriceCache) Invalidate(ctx context.Context, url string) error {
	if c == nil {
		return nil
	}
	return c.redis.Del(ctx, latestObservationKeyPrefix+url).Err()
}
