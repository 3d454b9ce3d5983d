package models

import "time"

// Review approval states
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// ValidApprovalStatus reports whether s is a known approval state
func ValidApprovalStatus(s string) bool {
	return s == ReviewPending || s == ReviewApproved || s == ReviewRejected
}

// MaxReviewImages limits how many images a review may attach
const MaxReviewImages = 5

// Review represents a product review. One review per user per product,
// enforced by the composite unique index. Only approved reviews count
// toward a product's rating. Reviews delete physically (no soft delete) so
// the unique index frees the slot and the user may review again.
type Review struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"user_id"`
	User             *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProductID        uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"product_id"`
	Product          *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Rating           int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title            string    `gorm:"not null" json:"title"`
	Comment          string    `gorm:"not null" json:"comment"`
	Images           []string  `gorm:"serializer:json" json:"images"`
	VerifiedPurchase bool      `gorm:"not null;default:false" json:"verifiedPurchase"`
	HelpfulCount     int       `gorm:"not null;default:0" json:"helpfulCount"`
	Approved         string    `gorm:"not null;default:'pending'" json:"approved"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// IsApproved reports whether the review counts toward product ratings
func (r *Review) IsApproved() bool {
	return r.Approved == ReviewApproved
}
