/**
 * @description
 * Price observation database model.
 * Maps to the 'price_observations' table in PostgreSQL. One row per scrape of
 * a product page, append-only: rows are never updated once written, so the
 * table is the full price history of the product.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// PriceObservation represents one immutable price/metadata snapshot for a
// product at a point in time. A price of exactly 0 is the "extraction could
// not determine a price" sentinel, not a real price.
type PriceObservation struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	ProductURL   string    `gorm:"column:product_url;uniqueIndex:idx_observation_product_time" json:"product_url"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Price        float64   `gorm:"column:price;not null" json:"price"`
	Currency     string    `gorm:"column:currency;not null" json:"currency"`
	MainImageURL *string   `gorm:"column:main_image_url" json:"main_image_url,omitempty"`
	Timestamp    time.Time `gorm:"column:timestamp;not null;uniqueIndex:idx_observation_product_time" json:"timestamp"`
}

// TableName overrides the table name used by PriceObservation to `price_observations`
func (PriceObservation) TableName() string {
	return "price_observations"
}
