/**
 * @description
 * Product database model.
 * Maps to the 'products' table in PostgreSQL. A product is identified by its
 * page URL and owns its observation history outright: deleting the product
 * cascades to every observation recorded for it.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

// Product represents a tracked product page
type Product struct {
	URL          string             `gorm:"primaryKey;column:url" json:"url"`
	Observations []PriceObservation `gorm:"foreignKey:ProductURL;references:URL;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name used by Product to `products`
func (Product) TableName() string {
	return "products"
}
