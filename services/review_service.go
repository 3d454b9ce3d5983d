package services

import (
	"gorm.io/gorm"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
)

// HasPurchased reports whether the user has a shipped or delivered order
// containing the product. Required before a review may be created.
func HasPurchased(db *gorm.DB, userID, productID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status IN ?",
			userID, productID, []string{models.OrderStatusShipped, models.OrderStatusDelivered}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecalcProductRating recomputes a product's average rating and review count
// over its approved reviews and writes both back. Full recompute, invoked on
// every review create, rating update, approval change and delete. Zeroes the
// fields when no approved review remains.
func RecalcProductRating(db *gorm.DB, productID uint) error {
	var stats struct {
		AvgRating  float64
		NumReviews int64
	}
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS num_reviews").
		Where("product_id = ? AND approved = ?", productID, models.ReviewApproved).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	return db.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":      stats.AvgRating,
			"num_reviews": stats.NumReviews,
		}).Error
}
