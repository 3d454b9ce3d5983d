package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NutritionalInfo holds the per-serving nutrition facts printed on the label
type NutritionalInfo struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Sugar        float64 `json:"sugar"`
	Fat          float64 `json:"fat"`
	SaturatedFat float64 `json:"saturatedFat"`
	Fiber        float64 `json:"fiber"`
	Salt         float64 `json:"salt"`
	ServingSize  string  `json:"servingSize"`
}

// Product represents a catalog product
type Product struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Name            string           `gorm:"not null" json:"name"`
	Slug            string           `gorm:"uniqueIndex;not null" json:"slug"`
	Description     string           `gorm:"not null" json:"description"`
	Price           decimal.Decimal  `gorm:"type:numeric;not null" json:"price"`
	DiscountPrice   *decimal.Decimal `gorm:"type:numeric" json:"discountPrice,omitempty"`
	Images          []string         `gorm:"serializer:json" json:"images"`
	CategoryID      uint             `gorm:"not null;index" json:"category_id"`
	Category        *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	NutritionalInfo NutritionalInfo  `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutritionalInfo"`
	Ingredients     []string         `gorm:"serializer:json" json:"ingredients"`
	Allergens       []string         `gorm:"serializer:json" json:"allergens"`
	CountryOfOrigin string           `json:"countryOfOrigin"`
	IsOrganic       bool             `gorm:"not null;default:false" json:"isOrganic"`
	IsVegan         bool             `gorm:"not null;default:false" json:"isVegan"`
	IsGlutenFree    bool             `gorm:"not null;default:false" json:"isGlutenFree"`
	Stock           int              `gorm:"not null;check:stock >= 0" json:"stock"`
	Sold            int              `gorm:"not null;default:0" json:"sold"`
	Rating          float64          `gorm:"not null;default:0" json:"rating"`     // derived, see review aggregation
	NumReviews      int              `gorm:"not null;default:0" json:"numReviews"` // derived, see review aggregation
	Featured        bool             `gorm:"not null;default:false" json:"featured"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// HasValidDiscount reports whether a discount price is set and strictly
// below the regular price.
func (p *Product) HasValidDiscount() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// UnitPrice returns the price a buyer pays for one unit: the discount price
// when valid, otherwise the regular price.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.HasValidDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}
